// internal/model/campaign_run.go
package model

import "time"

// CampaignRun is the live record of a broadcast campaign, polled by the dashboard.
type CampaignRun struct {
	ID            string     `json:"id,omitempty"`
	Active        bool       `json:"active"`
	Total         int        `json:"total"`
	SentOrSkipped int        `json:"sent_or_skipped"`
	Log           []string   `json:"log"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}
