// internal/service/campaign_scheduler.go
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/metrics"
	"github.com/unclebandit/promo-dashboard/internal/model"
	"github.com/unclebandit/promo-dashboard/internal/repository"
)

// MessageSender delivers one text message. Implemented by *whatsapp.Client.
type MessageSender interface {
	SendText(ctx context.Context, to, body string) error
}

// Pacing controls batching and the randomized waits of a campaign run.
// Delays and pauses are whole multiples of Unit, bounds inclusive. A zero
// or inverted range falls back to DefaultPacing.
type Pacing struct {
	BatchSize         int
	Unit              time.Duration
	SendDelayMin      int
	SendDelayMax      int
	PauseMin          int
	PauseMax          int
	EligibilityWindow time.Duration
}

// DefaultPacing is five contacts per batch, 2-5s between sends and 3-10min between batches.
func DefaultPacing() Pacing {
	return Pacing{
		BatchSize:         5,
		Unit:              time.Second,
		SendDelayMin:      2,
		SendDelayMax:      5,
		PauseMin:          180,
		PauseMax:          600,
		EligibilityWindow: 24 * time.Hour,
	}
}

func (p Pacing) withDefaults() Pacing {
	d := DefaultPacing()
	if p.BatchSize <= 0 {
		p.BatchSize = d.BatchSize
	}
	if p.Unit <= 0 {
		p.Unit = d.Unit
	}
	if p.SendDelayMax == 0 || p.SendDelayMax < p.SendDelayMin || p.SendDelayMin < 0 {
		p.SendDelayMin, p.SendDelayMax = d.SendDelayMin, d.SendDelayMax
	}
	if p.PauseMax == 0 || p.PauseMax < p.PauseMin || p.PauseMin < 0 {
		p.PauseMin, p.PauseMax = d.PauseMin, d.PauseMax
	}
	if p.EligibilityWindow <= 0 {
		p.EligibilityWindow = d.EligibilityWindow
	}
	return p
}

// CampaignScheduler owns the single broadcast campaign run of the process.
// Start, status and stop may be called concurrently; the run itself is
// executed by one background goroutine at a time.
type CampaignScheduler struct {
	Contacts repository.ContactRepositoryInterface
	Sender   MessageSender
	Pacing   Pacing
	// Now is used for the eligibility window. Defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	run      model.CampaignRun
	starting bool
	stop     chan struct{}
	done     chan struct{}
}

// NewCampaignScheduler returns an idle scheduler.
func NewCampaignScheduler(contacts repository.ContactRepositoryInterface, sender MessageSender, pacing Pacing) *CampaignScheduler {
	return &CampaignScheduler{
		Contacts: contacts,
		Sender:   sender,
		Pacing:   pacing,
	}
}

// StartCampaign validates the message variants, snapshots the contact list
// and launches the run in the background. It does not wait for the run.
func (s *CampaignScheduler) StartCampaign(ctx context.Context, variants []string) error {
	messages := usableVariants(variants)
	if len(messages) == 0 {
		return appErrors.ErrNoMessageVariants
	}

	s.mu.Lock()
	if s.run.Active || s.starting || s.draining() {
		s.mu.Unlock()
		return appErrors.ErrCampaignActive
	}
	s.starting = true
	s.mu.Unlock()

	contacts, err := s.Contacts.ListAllContacts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	rng.Shuffle(len(contacts), func(i, j int) {
		contacts[i], contacts[j] = contacts[j], contacts[i]
	})

	now := time.Now()
	s.run = model.CampaignRun{
		ID:        uuid.NewString(),
		Active:    true,
		Total:     len(contacts),
		Log:       []string{fmt.Sprintf("Starting campaign for %d contacts...", len(contacts))},
		StartedAt: &now,
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	metrics.CampaignActive.Set(1)

	logging.Info().Str("run", s.run.ID).Int("contacts", len(contacts)).Int("variants", len(messages)).Msg("campaign started")

	r := &campaignRun{
		scheduler: s,
		id:        s.run.ID,
		contacts:  contacts,
		messages:  messages,
		pacing:    s.Pacing.withDefaults(),
		rng:       rng,
		stop:      s.stop,
	}
	go func(done chan struct{}) {
		defer close(done)
		r.execute(context.WithoutCancel(ctx))
	}(s.done)

	return nil
}

// GetStatus returns a copy of the current (or last) run.
func (s *CampaignScheduler) GetStatus() model.CampaignRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.run
	snapshot.Log = append([]string{}, s.run.Log...)
	return snapshot
}

// StopCampaign asks the active run to stop at its next check point.
func (s *CampaignScheduler) StopCampaign() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.run.Active {
		return appErrors.ErrNothingToStop
	}
	s.run.Active = false
	close(s.stop)
	logging.Info().Str("run", s.run.ID).Msg("campaign stop requested")
	return nil
}

// Wait blocks until the current run goroutine has exited.
func (s *CampaignScheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// draining reports whether a run goroutine is still alive. Caller holds mu.
func (s *CampaignScheduler) draining() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *CampaignScheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CampaignScheduler) appendLog(runID, entry string) {
	s.mu.Lock()
	if s.run.ID == runID {
		s.run.Log = append(s.run.Log, entry)
	}
	s.mu.Unlock()
	logging.Info().Str("run", runID).Msg(entry)
}

func (s *CampaignScheduler) markProcessed(runID, outcome string) {
	s.mu.Lock()
	if s.run.ID == runID && s.run.SentOrSkipped < s.run.Total {
		s.run.SentOrSkipped++
	}
	s.mu.Unlock()
	metrics.CampaignSends.WithLabelValues(outcome).Inc()
}

func (s *CampaignScheduler) finish(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run.ID != runID {
		return
	}
	now := time.Now()
	s.run.Active = false
	s.run.FinishedAt = &now
	metrics.CampaignActive.Set(0)
}

func usableVariants(variants []string) []string {
	messages := make([]string, 0, len(variants))
	for _, v := range variants {
		if strings.TrimSpace(v) != "" {
			messages = append(messages, v)
		}
	}
	return messages
}

// campaignRun is the state owned by one run goroutine.
type campaignRun struct {
	scheduler *CampaignScheduler
	id        string
	contacts  []string
	messages  []string
	pacing    Pacing
	rng       *rand.Rand
	stop      <-chan struct{}
	stopped   bool
}

func (r *campaignRun) execute(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			logging.Error().Str("run", r.id).Interface("panic", p).Msg("campaign run panicked")
			r.log("Campaign aborted by an internal error.")
		}
		if !r.stopped && r.cancelled() {
			r.logStopped("Campaign stopped by user.")
		}
		r.log("Campaign finished.")
		r.scheduler.finish(r.id)
		metrics.CampaignRuns.WithLabelValues(r.result()).Inc()
	}()

	if len(r.contacts) == 0 {
		r.log("No contacts to send to.")
		return
	}

	batches := batch(r.contacts, r.pacing.BatchSize)
	for i, b := range batches {
		if r.cancelled() {
			r.logStopped("Campaign stopped by user.")
			return
		}
		if !r.processBatch(ctx, b) {
			r.logStopped("Campaign stopped by user.")
			return
		}
		if i < len(batches)-1 && !r.cancelled() {
			if !r.pause() {
				r.logStopped("Pause interrupted: campaign stopped by user.")
				return
			}
		}
	}
}

// processBatch returns false when the run was cancelled mid-batch.
func (r *campaignRun) processBatch(ctx context.Context, contacts []string) bool {
	for _, phone := range contacts {
		if r.cancelled() {
			return false
		}
		masked := logging.MaskPhone(phone)

		windowStart := r.scheduler.now().Add(-r.pacing.EligibilityWindow)
		eligible, err := r.scheduler.Contacts.HasRecentInboundMessage(ctx, phone, windowStart)
		if err != nil {
			r.log(fmt.Sprintf("Failed to check eligibility for %s: %v", masked, err))
			r.scheduler.markProcessed(r.id, "failed")
			continue
		}
		if !eligible {
			r.log(fmt.Sprintf("Skipped %s: no interaction in the last %s.", masked, formatWindow(r.pacing.EligibilityWindow)))
			r.scheduler.markProcessed(r.id, "skipped")
			continue
		}

		message := r.messages[r.rng.IntN(len(r.messages))]
		if err := r.scheduler.Sender.SendText(ctx, phone, message); err != nil {
			r.log(fmt.Sprintf("Failed to send to %s: %s", masked, failureDetail(err)))
			logging.Warn().Err(err).Str("run", r.id).Str("to", masked).Msg("campaign send failed")
			r.scheduler.markProcessed(r.id, "failed")
		} else {
			r.log(fmt.Sprintf("Sent to %s.", masked))
			r.scheduler.markProcessed(r.id, "sent")
		}

		if !r.sleep(r.randomUnits(r.pacing.SendDelayMin, r.pacing.SendDelayMax)) {
			return false
		}
	}
	return true
}

// pause waits between batches one unit at a time so a stop request is
// honoured within one tick. Returns false when interrupted.
func (r *campaignRun) pause() bool {
	units := r.randomUnits(r.pacing.PauseMin, r.pacing.PauseMax)
	r.log(fmt.Sprintf("Pausing %s before the next batch.", time.Duration(units)*r.pacing.Unit))
	for i := 0; i < units; i++ {
		if !r.sleep(1) {
			return false
		}
	}
	return !r.cancelled()
}

// sleep waits units*Unit and returns false if the run was cancelled meanwhile.
func (r *campaignRun) sleep(units int) bool {
	if units <= 0 {
		return !r.cancelled()
	}
	t := time.NewTimer(time.Duration(units) * r.pacing.Unit)
	defer t.Stop()
	select {
	case <-r.stop:
		return false
	case <-t.C:
		return true
	}
}

func (r *campaignRun) cancelled() bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

func (r *campaignRun) randomUnits(lo, hi int) int {
	return lo + r.rng.IntN(hi-lo+1)
}

func (r *campaignRun) log(entry string) {
	r.scheduler.appendLog(r.id, entry)
}

func (r *campaignRun) logStopped(entry string) {
	r.stopped = true
	r.log(entry)
}

func (r *campaignRun) result() string {
	switch {
	case r.stopped:
		return "stopped"
	case len(r.contacts) == 0:
		return "empty"
	default:
		return "completed"
	}
}

func batch(contacts []string, size int) [][]string {
	batches := make([][]string, 0, (len(contacts)+size-1)/size)
	for start := 0; start < len(contacts); start += size {
		end := min(start+size, len(contacts))
		batches = append(batches, contacts[start:end])
	}
	return batches
}

// failureDetail prefers the provider's response body.
func failureDetail(err error) string {
	var sendErr *appErrors.SendError
	if errors.As(err, &sendErr) && sendErr.Detail != "" {
		return sendErr.Detail
	}
	return "no response"
}

func formatWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}
