package models

import "time"

// Trigger names what started a generation run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
	TriggerBackfill  Trigger = "backfill"
)

// GenerationRun is the per-date marker written when daily generation completes.
type GenerationRun struct {
	ServiceDate time.Time
	Trigger     Trigger
	StartedAt   time.Time
	FinishedAt  time.Time
	Applicable  int
	Created     int
	Skipped     int
	Failed      int
}
