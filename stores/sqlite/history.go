// Copyright (c) 2026 Deepsel Systems. All rights reserved.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/DeepselSystems/relkit/model"
)

// RecordBump inserts a BumpRecord and returns its assigned ID.
func (s *SQLiteStore) RecordBump(ctx context.Context, b *model.BumpRecord) (int64, error) {
	const query = `
		INSERT INTO bumps (run_id, axis, old_version, new_version, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		b.RunID,
		b.Axis,
		b.OldVersion,
		b.NewVersion,
		b.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert bump: %w", err)
	}
	return result.LastInsertId()
}

// RecordStep inserts a StepRecord and returns its assigned ID.
func (s *SQLiteStore) RecordStep(ctx context.Context, st *model.StepRecord) (int64, error) {
	const query = `
		INSERT INTO steps (run_id, name, status, error_code, error_message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		st.RunID,
		st.Name,
		st.Status,
		st.ErrorCode,
		st.ErrorMessage,
		st.Duration.Milliseconds(),
		st.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert step: %w", err)
	}
	return result.LastInsertId()
}

// ListBumps returns the most recent bumps, newest first.
func (s *SQLiteStore) ListBumps(ctx context.Context, limit int) ([]*model.BumpRecord, error) {
	const query = `
		SELECT id, run_id, axis, old_version, new_version, created_at
		FROM bumps
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list bumps: %w", err)
	}
	defer rows.Close()

	var bumps []*model.BumpRecord
	for rows.Next() {
		var b model.BumpRecord
		var createdAt string
		if err := rows.Scan(&b.ID, &b.RunID, &b.Axis, &b.OldVersion, &b.NewVersion, &createdAt); err != nil {
			return nil, fmt.Errorf("scan bump: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			b.CreatedAt = t
		}
		bumps = append(bumps, &b)
	}
	return bumps, rows.Err()
}

// ListSteps returns the most recent step runs, newest first.
func (s *SQLiteStore) ListSteps(ctx context.Context, limit int) ([]*model.StepRecord, error) {
	const query = `
		SELECT id, run_id, name, status, error_code, error_message, duration_ms, created_at
		FROM steps
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var steps []*model.StepRecord
	for rows.Next() {
		var st model.StepRecord
		var durationMS int64
		var createdAt string
		if err := rows.Scan(&st.ID, &st.RunID, &st.Name, &st.Status, &st.ErrorCode, &st.ErrorMessage, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		st.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			st.CreatedAt = t
		}
		steps = append(steps, &st)
	}
	return steps, rows.Err()
}
