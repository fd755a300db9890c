package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/rs/zerolog/log"
)

// Plate shapes the OCR filter accepts: 2-3 letters/digits prefix, optional
// separator, 3-6 trailing digits. Loose on purpose, the normalizer and
// voter downstream do the real vetting.
var platePattern = regexp.MustCompile(`^[A-Z0-9]{2,4}[- ]?[A-Z0-9]{1,3}[- ]?[0-9]{3,6}$`)

// LPRService extracts plate candidates from camera frames with Rekognition
// DetectText. It only surfaces line detections that look like plates; the
// caller feeds the candidates into the detection pipeline.
type LPRService struct {
	client *rekognition.Client
}

func NewLPRService(client *rekognition.Client) *LPRService {
	return &LPRService{client: client}
}

// Enabled reports whether a Rekognition client was configured.
func (s *LPRService) Enabled() bool {
	return s.client != nil
}

// DetectPlates runs OCR over the frame and returns plate-shaped candidates
// ordered as Rekognition emitted them. Confidence is scaled to 0..1 to
// match the observation pipeline.
func (s *LPRService) DetectPlates(ctx context.Context, imageBytes []byte) ([]domain.LPRCandidate, error) {
	if s.client == nil {
		return nil, fmt.Errorf("rekognition client is not configured")
	}

	result, err := s.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: imageBytes},
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectText: %w", err)
	}

	var candidates []domain.LPRCandidate
	for _, detection := range result.TextDetections {
		if detection.Type != types.TextTypesLine {
			continue
		}
		if detection.DetectedText == nil || detection.Confidence == nil {
			continue
		}
		text := strings.ToUpper(strings.TrimSpace(*detection.DetectedText))
		if !platePattern.MatchString(text) {
			continue
		}
		candidates = append(candidates, domain.LPRCandidate{
			PlateText:  text,
			Confidence: float64(*detection.Confidence) / 100.0,
		})
	}

	log.Debug().Int("detections", len(result.TextDetections)).Int("candidates", len(candidates)).Msg("frame processed")
	return candidates, nil
}
