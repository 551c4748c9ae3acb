package procs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemManager is the Manager for processes of the local host.
// A process is a worker when its executable name contains the configured pattern.
type SystemManager struct {
	pattern string
	log     zerolog.Logger
}

// NewSystemManager creates a manager matching process names against pattern.
func NewSystemManager(pattern string, log zerolog.Logger) *SystemManager {
	return &SystemManager{
		pattern: pattern,
		log:     log.With().Str("component", "procs").Logger(),
	}
}

// List returns the running processes whose name contains the pattern.
// Processes that exit or deny access while being inspected are left out.
func (m *SystemManager) List(ctx context.Context) ([]Process, error) {
	all, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	matched := make([]Process, 0)
	for _, p := range all {
		name, err := p.NameWithContext(ctx)
		if err != nil || !strings.Contains(name, m.pattern) {
			continue
		}

		createdMs, err := p.CreateTimeWithContext(ctx)
		if err != nil {
			m.log.Debug().Int32("pid", p.Pid).Err(err).Msg("Skipping process without creation time")
			continue
		}

		matched = append(matched, Process{
			PID:     p.Pid,
			Name:    name,
			Created: time.UnixMilli(createdMs),
		})
	}

	return matched, nil
}

// Terminate sends SIGTERM (TerminateProcess on Windows) to pid.
func (m *SystemManager) Terminate(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return fmt.Errorf("%w: pid %d", ErrNoProcess, pid)
		}
		return err
	}

	if err := p.TerminateWithContext(ctx); err != nil {
		return err
	}

	m.log.Warn().Int32("pid", pid).Msg("Terminated worker process")
	return nil
}
