// internal/service/inbox_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unclebandit/promo-dashboard/internal/model"
	"github.com/unclebandit/promo-dashboard/internal/repository"
)

// InvalidStatusError reports a complaint status outside the allowed set.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid complaint status %q", e.Status)
}

type statusChange struct {
	Status string `validate:"required,oneof=registered in_review solved unsolved"`
}

// InboxService serves the dashboard inbox and the complaints board.
type InboxService struct {
	Messages   repository.MessageRepositoryInterface
	Complaints repository.ComplaintRepositoryInterface
	Limit      int

	validate *validator.Validate
}

func NewInboxService(messages repository.MessageRepositoryInterface, complaints repository.ComplaintRepositoryInterface) *InboxService {
	return &InboxService{
		Messages:   messages,
		Complaints: complaints,
		Limit:      50,
		validate:   validator.New(),
	}
}

// RecentMessages returns the newest inbox entries first.
func (s *InboxService) RecentMessages(ctx context.Context) ([]model.InboundMessage, error) {
	return s.Messages.ListRecent(ctx, s.Limit)
}

// Promote moves an inbox message onto the complaints board.
func (s *InboxService) Promote(ctx context.Context, messageID int) (*model.Complaint, error) {
	return s.Complaints.PromoteMessage(ctx, messageID)
}

// ListComplaints filters by status and by the calendar day the complaint
// was created, both optional.
func (s *InboxService) ListComplaints(ctx context.Context, status string, day *time.Time) ([]model.Complaint, error) {
	if status != "" {
		if err := s.validate.Struct(statusChange{Status: status}); err != nil {
			return nil, &InvalidStatusError{Status: status}
		}
	}
	return s.Complaints.List(ctx, repository.ComplaintFilter{Status: status, Day: day})
}

func (s *InboxService) UpdateComplaintStatus(ctx context.Context, id int, status string) (*model.Complaint, error) {
	if err := s.validate.Struct(statusChange{Status: status}); err != nil {
		return nil, &InvalidStatusError{Status: status}
	}
	return s.Complaints.UpdateStatus(ctx, id, status)
}

func (s *InboxService) ComplaintSummary(ctx context.Context) (model.ComplaintSummary, error) {
	return s.Complaints.Summary(ctx)
}
