package service

import (
	"context"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/rs/zerolog/log"
)

// DetectionService is the camera intake pipeline: raw plate text goes
// through normalization and the confidence voter, and confirmed events are
// handed to the session ledger. Both the SQS consumer and the HTTP
// observation endpoint feed it.
type DetectionService struct {
	normalizer *domain.PlateNormalizer
	voter      *ConfidenceVoter
	parking    *ParkingService
}

func NewDetectionService(normalizer *domain.PlateNormalizer, voter *ConfidenceVoter, parking *ParkingService) *DetectionService {
	return &DetectionService{normalizer: normalizer, voter: voter, parking: parking}
}

// Ingest processes one raw sighting. It returns the confirmed event when
// the sighting completed a quorum, nil when it was absorbed into a tally or
// rejected. ErrInvalidPlate means the text never entered the voter.
func (s *DetectionService) Ingest(ctx context.Context, rawPlate string, confidence float64, ts time.Time) (*domain.ConfirmedEvent, error) {
	plate, ok := s.normalizer.Normalize(rawPlate)
	if !ok {
		return nil, ErrInvalidPlate
	}

	event := s.voter.Observe(plate, confidence, ts)
	if event == nil {
		return nil, nil
	}

	switch event.Kind {
	case domain.EventEntry:
		if _, _, err := s.parking.HandleEntry(ctx, event.Plate, event.Timestamp); err != nil {
			return event, err
		}
	case domain.EventExit:
		if _, err := s.parking.HandleExit(ctx, event.Plate, event.Timestamp); err != nil {
			return event, err
		}
	}

	log.Debug().Str("plate", event.Plate).Str("kind", string(event.Kind)).Msg("confirmed plate event applied")
	return event, nil
}
