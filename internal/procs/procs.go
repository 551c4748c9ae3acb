// Package procs finds and stops the worker processes a sweep spawns.
//
// The sweep logic never talks to the operating system directly; it goes through Manager, which
// has one implementation backed by gopsutil and can be faked in tests.
package procs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNoProcess is returned when no worker process matches.
var ErrNoProcess = errors.New("no matching worker process")

// Process is a running worker process.
type Process struct {
	PID     int32     `json:"pid"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
}

// Manager lists worker processes and terminates them by id.
type Manager interface {
	// List returns the worker processes currently running, in no particular order.
	List(ctx context.Context) ([]Process, error)
	// Terminate sends a termination request to the process. It does not wait for exit.
	Terminate(ctx context.Context, pid int32) error
}

// Candidates returns the worker processes sorted by creation time, oldest first.
func Candidates(ctx context.Context, m Manager) ([]Process, error) {
	processes, err := m.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker processes: %w", err)
	}

	sort.SliceStable(processes, func(i, j int) bool {
		if processes[i].Created.Equal(processes[j].Created) {
			return processes[i].PID < processes[j].PID
		}
		return processes[i].Created.Before(processes[j].Created)
	})

	return processes, nil
}

// TerminateLatest terminates the most recently started worker process and returns it.
// It returns ErrNoProcess when there is nothing to terminate.
//
// Termination is a blunt instrument: no graceful shutdown precedes it and the call does not
// wait for the process to exit. Only use it once no further result writes are pending.
func TerminateLatest(ctx context.Context, m Manager) (Process, error) {
	processes, err := Candidates(ctx, m)
	if err != nil {
		return Process{}, err
	}
	if len(processes) == 0 {
		return Process{}, ErrNoProcess
	}

	latest := processes[len(processes)-1]
	if err := m.Terminate(ctx, latest.PID); err != nil {
		return Process{}, fmt.Errorf("failed to terminate process %d: %w", latest.PID, err)
	}

	return latest, nil
}
