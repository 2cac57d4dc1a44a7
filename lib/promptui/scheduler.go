// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptui

import tea "github.com/charmbracelet/bubbletea"

// postedMsg carries a continuation onto the bubbletea event loop.
type postedMsg struct {
	fn func()
}

// Scheduler implements prompt.Scheduler on top of the model's Update
// loop. Posted functions run in order, one per message.
type Scheduler struct {
	queue chan func()
}

// NewScheduler returns a scheduler with room for backlog pending
// continuations before Post blocks.
func NewScheduler(backlog int) *Scheduler {
	return &Scheduler{queue: make(chan func(), backlog)}
}

// Post queues fn. Safe from any goroutine.
func (s *Scheduler) Post(fn func()) {
	s.queue <- fn
}

// listen waits for the next posted continuation.
func (s *Scheduler) listen() tea.Cmd {
	return func() tea.Msg {
		return postedMsg{fn: <-s.queue}
	}
}
