package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the service logger: JSON output, level driven by the
// runtime mode, client PII masked through a formatter hook.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&maskingFormatter{
		inner: &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		},
		masker: NewPIIMasker(),
	})
	logger.SetOutput(os.Stdout)

	if os.Getenv("GIN_MODE") == "release" || os.Getenv("GO_ENV") == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// maskingFormatter masks contact PII in messages and string fields before
// the JSON formatter runs. Client emails and phone numbers reach logs via
// search terms and intake payloads.
type maskingFormatter struct {
	inner  logrus.Formatter
	masker *PIIMasker
}

func (f *maskingFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Message = f.masker.MaskAll(entry.Message)
	for key, value := range entry.Data {
		if s, ok := value.(string); ok {
			entry.Data[key] = f.masker.MaskAll(s)
		}
	}
	return f.inner.Format(entry)
}
