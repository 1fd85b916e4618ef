// internal/service/drawing_service.go
package service

import (
	"context"
	"math/rand/v2"

	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/model"
	"github.com/unclebandit/promo-dashboard/internal/repository"
)

type DrawingService struct {
	Participants repository.ParticipantRepositoryInterface
	// Pick returns an index in [0, n). Defaults to a uniform random pick.
	Pick func(n int) int
}

func (s *DrawingService) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	return s.Participants.ListAll(ctx)
}

// Draw picks a winner among everyone enrolled.
func (s *DrawingService) Draw(ctx context.Context) (*model.Participant, error) {
	participants, err := s.Participants.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, appErrors.ErrNoParticipants
	}

	pick := s.Pick
	if pick == nil {
		pick = rand.IntN
	}
	winner := participants[pick(len(participants))]
	logging.Info().Str("winner", logging.MaskPhone(winner.Phone)).Int("participants", len(participants)).Msg("drawing completed")
	return &winner, nil
}
