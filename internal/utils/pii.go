package utils

import (
	"regexp"
	"strings"
)

// PIIMasker masks personally identifiable information in log output
type PIIMasker struct {
	emailRegex *regexp.Regexp
	phoneRegex *regexp.Regexp
}

// NewPIIMasker creates a new PII masker instance
func NewPIIMasker() *PIIMasker {
	return &PIIMasker{
		emailRegex: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		phoneRegex: regexp.MustCompile(`\+[1-9]\d{7,14}`),
	}
}

// MaskEmail masks an email address: john.doe@example.com -> j***@example.com
func (m *PIIMasker) MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || len(parts[0]) == 0 {
		return "[masked-email]"
	}
	return parts[0][:1] + "***@" + parts[1]
}

// MaskPhone masks all but the last two digits of a phone number
func (m *PIIMasker) MaskPhone(phone string) string {
	if len(phone) <= 2 {
		return "***"
	}
	return "***" + phone[len(phone)-2:]
}

// MaskAll masks every email and phone number found in the string
func (m *PIIMasker) MaskAll(s string) string {
	s = m.emailRegex.ReplaceAllStringFunc(s, m.MaskEmail)
	s = m.phoneRegex.ReplaceAllStringFunc(s, m.MaskPhone)
	return s
}
