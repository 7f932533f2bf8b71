// Copyright (c) 2026 Deepsel Systems. All rights reserved.

// Package steps runs the release pipeline: a fixed, linear sequence of
// external tool invocations (formatter, linter, security scanner, test
// runner, build tool, upload tool). Steps have no branching logic; the
// single decision point is the yes/no confirmation before publish.
package steps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DeepselSystems/relkit/model"
)

// Step names.
const (
	StepDeps    = "deps"
	StepFmt     = "fmt"
	StepLint    = "lint"
	StepAudit   = "audit"
	StepTest    = "test"
	StepBuild   = "build"
	StepPublish = "publish"
)

// ReleaseSequence is the order of steps run by the release command.
var ReleaseSequence = []string{StepFmt, StepLint, StepAudit, StepTest, StepBuild}

// HistoryStore defines the store operations needed by Runner.
type HistoryStore interface {
	RecordStep(ctx context.Context, st *model.StepRecord) (int64, error)
}

// Runner executes pipeline steps and records each run in the history
// store when one is attached.
type Runner struct {
	commands map[string][]string
	dir      string
	in       io.Reader
	out      io.Writer
	errw     io.Writer
	store    HistoryStore
	runID    string
}

// NewRunner creates a Runner over the given step commands (step name
// to argv), executing in dir.
func NewRunner(commands map[string][]string, dir string) *Runner {
	return &Runner{
		commands: commands,
		dir:      dir,
		in:       os.Stdin,
		out:      os.Stdout,
		errw:     os.Stderr,
		runID:    uuid.NewString(),
	}
}

// SetIO redirects step input and output for testing.
func (r *Runner) SetIO(in io.Reader, out, errw io.Writer) {
	r.in = in
	r.out = out
	r.errw = errw
}

// SetStore attaches a history store. A nil store disables recording.
func (r *Runner) SetStore(store HistoryStore) {
	r.store = store
}

// RunID returns the identifier shared by every record of this
// invocation.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes a single step, waiting for the external tool to finish.
// The tool inherits the runner's stdin so interactive prompts (e.g.
// upload credentials) still work.
func (r *Runner) Run(ctx context.Context, name string) error {
	argv, ok := r.commands[name]
	if !ok || len(argv) == 0 {
		err := &ErrUnknownStep{Name: name}
		r.record(ctx, name, 0, err)
		return err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.dir
	cmd.Stdin = r.in
	cmd.Stdout = r.out
	cmd.Stderr = r.errw

	started := time.Now()
	runErr := cmd.Run()
	if runErr != nil {
		runErr = &ErrCommand{Step: name, Command: strings.Join(argv, " "), Err: runErr}
	}
	r.record(ctx, name, time.Since(started), runErr)
	return runErr
}

// RunSequence executes steps in order, stopping at the first failure.
func (r *Runner) RunSequence(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := r.Run(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// record writes a step outcome to the history store. History is
// advisory; a failed insert does not fail the step.
func (r *Runner) record(ctx context.Context, name string, duration time.Duration, runErr error) {
	if r.store == nil {
		return
	}
	st := &model.StepRecord{
		RunID:     r.runID,
		Name:      name,
		Status:    model.StepStatusOk,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
	if runErr != nil {
		st.Status = model.StepStatusFailed
		st.ErrorCode = ErrorCode(runErr)
		st.ErrorMessage = runErr.Error()
	}
	if _, err := r.store.RecordStep(ctx, st); err != nil {
		log.Printf("history: record step %s: %v\n", name, err)
	}
}

// Confirm prompts for a yes/no answer on in. Only "y" and "yes"
// (case-insensitive) confirm; EOF and anything else decline.
func Confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, err
		}
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
