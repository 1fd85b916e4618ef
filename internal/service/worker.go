// internal/service/worker.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/metrics"
	"github.com/unclebandit/promo-dashboard/internal/model"
	"github.com/unclebandit/promo-dashboard/internal/queue"
)

// ReplyWorker confirms drawing enrollments over WhatsApp
type ReplyWorker struct {
	Sender   MessageSender
	Template string
	Timeout  time.Duration
}

// Constructor
func NewReplyWorker(sender MessageSender, template string) *ReplyWorker {
	return &ReplyWorker{
		Sender:   sender,
		Template: template,
		Timeout:  30 * time.Second,
	}
}

// Start subscribes the worker to the drawing replies topic
func (w *ReplyWorker) Start(q queue.Queue) error {
	return q.Subscribe(queue.TopicDrawingReplies, w.Handle)
}

// Handle processes one queued reply. Errors that a retry cannot fix are
// logged and swallowed so the queue drops the job.
func (w *ReplyWorker) Handle(payload any) error {
	job, err := decodeReplyJob(payload)
	if err != nil {
		logging.Warn().Err(err).Msg("invalid reply job")
		metrics.ReplyJobs.WithLabelValues("invalid").Inc()
		return nil
	}

	body := RenderTemplate(w.Template, map[string]string{"name": job.Name}, "participante")

	ctx := context.Background()
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	err = w.Sender.SendText(ctx, job.Phone, body)
	switch {
	case err == nil:
		logging.Info().Str("to", logging.MaskPhone(job.Phone)).Msg("drawing confirmation sent")
		metrics.ReplyJobs.WithLabelValues("sent").Inc()
		return nil
	case permanentSendFailure(err):
		logging.Warn().Err(err).Str("to", logging.MaskPhone(job.Phone)).Msg("drawing confirmation rejected")
		metrics.ReplyJobs.WithLabelValues("rejected").Inc()
		return nil
	default:
		metrics.ReplyJobs.WithLabelValues("retry").Inc()
		return err
	}
}

func decodeReplyJob(payload any) (model.ReplyJob, error) {
	var job model.ReplyJob
	switch p := payload.(type) {
	case model.ReplyJob:
		job = p
	case *model.ReplyJob:
		if p == nil {
			return job, errors.New("nil reply job")
		}
		job = *p
	case []byte:
		if err := json.Unmarshal(p, &job); err != nil {
			return job, fmt.Errorf("decode reply job: %w", err)
		}
	default:
		return job, fmt.Errorf("unexpected payload type %T", payload)
	}
	if job.Phone == "" {
		return job, errors.New("reply job without phone")
	}
	return job, nil
}

func permanentSendFailure(err error) bool {
	if errors.Is(err, appErrors.ErrMissingCredentials) {
		return true
	}
	var sendErr *appErrors.SendError
	return errors.As(err, &sendErr) && sendErr.StatusCode >= 400 && sendErr.StatusCode < 500 && sendErr.StatusCode != 429
}
