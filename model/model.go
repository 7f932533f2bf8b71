// Copyright (c) 2026 Deepsel Systems. All rights reserved.

// Package model defines the records persisted to the release history
// store.
package model

import "time"

// Step run statuses.
const (
	StepStatusOk     = "ok"
	StepStatusFailed = "failed"
)

// BumpRecord is one version bump: which axis was incremented and the
// versions before and after.
type BumpRecord struct {
	ID         int64
	RunID      string // uuid shared by every record of one invocation
	Axis       string // major, minor, patch
	OldVersion string
	NewVersion string
	CreatedAt  time.Time
}

// StepRecord is one executed release-pipeline step.
type StepRecord struct {
	ID           int64
	RunID        string
	Name         string // deps, fmt, lint, audit, test, build, publish
	Status       string // ok, failed
	ErrorCode    string
	ErrorMessage string
	Duration     time.Duration
	CreatedAt    time.Time
}
