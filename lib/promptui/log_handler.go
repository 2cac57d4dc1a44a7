// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers a slog record to the model for display in the
// status bar.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// logRecordFadeMsg clears a log record from the status bar. Generation
// matches the record it fades so a newer record is not cleared early.
type logRecordFadeMsg struct {
	Generation int
}

// logRecordFadeDelay is how long a record stays in the status bar.
const logRecordFadeDelay = 5 * time.Second

// logBacklog bounds records waiting for the model. Beyond it records
// are dropped; the status bar only shows the latest one anyway.
const logBacklog = 64

// LogHandler is a slog.Handler that routes records into the model's
// status bar. Records below the configured level are dropped.
//
// Records are queued on a channel rather than sent with
// tea.Program.Send: the session logs from inside Update, where a
// synchronous Send would block the loop that has to receive it.
//
// Handlers derived via WithAttrs/WithGroup share the queue.
type LogHandler struct {
	level   slog.Level
	records chan logRecordMsg
	attrs   []slog.Attr
	groups  []string
}

// NewLogHandler creates a handler delivering records at or above level.
func NewLogHandler(level slog.Level) *LogHandler {
	return &LogHandler{
		level:   level,
		records: make(chan logRecordMsg, logBacklog),
	}
}

// Enabled reports whether the handler is interested in level.
func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle formats the record as "message (key=value, ...)" and queues
// it. A full queue drops the record.
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	prefix := strings.Join(handler.groups, ".")
	if prefix != "" {
		prefix += "."
	}

	var attrParts []string
	for _, attr := range handler.attrs {
		attrParts = append(attrParts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrParts = append(attrParts, fmt.Sprintf("%s%s=%s", prefix, attr.Key, attr.Value))
		return true
	})

	summary := record.Message
	if len(attrParts) > 0 {
		summary += " (" + strings.Join(attrParts, ", ") + ")"
	}

	select {
	case handler.records <- logRecordMsg{Summary: summary, Level: record.Level}:
	default:
	}
	return nil
}

// WithAttrs returns a handler with attrs appended, sharing the queue.
func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{
		level:   handler.level,
		records: handler.records,
		attrs:   append(slices.Clone(handler.attrs), attrs...),
		groups:  slices.Clone(handler.groups),
	}
}

// WithGroup returns a handler with name appended, sharing the queue.
func (handler *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{
		level:   handler.level,
		records: handler.records,
		attrs:   slices.Clone(handler.attrs),
		groups:  append(slices.Clone(handler.groups), name),
	}
}

// listen waits for the next queued record.
func (handler *LogHandler) listen() tea.Cmd {
	return func() tea.Msg {
		return <-handler.records
	}
}
