package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"quality-service/internal/models"
	"quality-service/internal/repository"
)

// DefaultTrackingFormat is applied when a client has no format configured.
const DefaultTrackingFormat = "WAQC-{lab}-{year}-{seq:05d}"

var seqPlaceholder = regexp.MustCompile(`\{seq(?::0(\d+)d)?\}`)

// TrackingService allocates and validates sample tracking numbers
type TrackingService struct {
	samples repository.SampleRepository
	clients repository.ClientRepository
	storage repository.StorageRepository
}

// NewTrackingService creates a new tracking number service
func NewTrackingService(
	samples repository.SampleRepository,
	clients repository.ClientRepository,
	storage repository.StorageRepository,
) *TrackingService {
	return &TrackingService{samples: samples, clients: clients, storage: storage}
}

// Allocate claims the next sequence value for (client, laboratory, year) and
// renders it through the client's format template. The sequence step itself
// is a single atomic statement in the repository, so concurrent callers
// always receive distinct numbers.
func (s *TrackingService) Allocate(ctx context.Context, clientID, laboratoryID uuid.UUID, origin string) (*models.TrackingAllocation, error) {
	if clientID == uuid.Nil {
		return nil, ValidationError("client_id is required")
	}
	if laboratoryID == uuid.Nil {
		return nil, ValidationError("laboratory_id is required")
	}

	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, UpstreamError("failed to load client", err)
	}
	if client == nil {
		return nil, NotFoundError("client")
	}

	lab, err := s.storage.GetLaboratory(ctx, laboratoryID)
	if err != nil {
		return nil, UpstreamError("failed to load laboratory", err)
	}
	if lab == nil {
		return nil, NotFoundError("laboratory")
	}

	year := time.Now().Year()
	seq, err := s.samples.AllocateSequence(ctx, clientID, laboratoryID, year)
	if err != nil {
		return nil, UpstreamError("tracking number allocation failed", err)
	}

	format := client.TrackingNumberFormat
	if format == "" {
		format = DefaultTrackingFormat
	}

	name := client.DisplayName
	if name == "" {
		name = client.CompanyName
	}

	return &models.TrackingAllocation{
		TrackingNumber: RenderTrackingNumber(format, lab.Code, year, seq, origin),
		ClientName:     name,
		FormatUsed:     format,
		Sequence:       seq,
	}, nil
}

// Lookup resolves a tracking number to its sample. A number that was never
// allocated is a valid negative result, not an error.
func (s *TrackingService) Lookup(ctx context.Context, trackingNumber string) (*models.TrackingLookup, error) {
	if trackingNumber == "" {
		return nil, ValidationError("tracking_number is required")
	}

	sample, err := s.samples.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, UpstreamError("tracking number lookup failed", err)
	}
	if sample == nil {
		return &models.TrackingLookup{Exists: false, Valid: false}, nil
	}

	created := sample.CreatedAt
	return &models.TrackingLookup{
		Exists:    true,
		Valid:     true,
		SampleID:  &sample.ID,
		CreatedAt: &created,
	}, nil
}

// RenderTrackingNumber expands a tracking format template. Supported
// placeholders: {lab}, {year}, {origin}, {seq} and zero-padded {seq:0Nd}.
func RenderTrackingNumber(format, labCode string, year, seq int, origin string) string {
	out := strings.ReplaceAll(format, "{lab}", labCode)
	out = strings.ReplaceAll(out, "{year}", strconv.Itoa(year))
	out = strings.ReplaceAll(out, "{origin}", origin)
	out = seqPlaceholder.ReplaceAllStringFunc(out, func(match string) string {
		groups := seqPlaceholder.FindStringSubmatch(match)
		if groups[1] == "" {
			return strconv.Itoa(seq)
		}
		width, _ := strconv.Atoi(groups[1])
		return fmt.Sprintf("%0*d", width, seq)
	})
	return out
}
