// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

// Close tears the session down. It is idempotent. In order: stop
// auto-save, fail waiting passphrase requests, close children, scrub
// every editable field, then release the host window. Continuations
// posted before Close that run afterwards are dropped.
func (s *Session) Close() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	s.logger.Info("prompt closing", "mode", s.mode)

	s.stopAutoSave()
	s.autoSave.stopped = true
	s.passphrases.failAll(ErrClosed)

	for i := len(s.config.Children) - 1; i >= 0; i-- {
		if err := s.config.Children[i].Close(); err != nil {
			s.logger.Warn("closing prompt child failed", "error", err)
		}
	}

	if s.config.Document != nil {
		for _, id := range s.config.Document.EditableFields() {
			if err := s.config.Document.SetValue(id, ""); err != nil {
				s.logger.Warn("scrubbing field failed", "field", id, "error", err)
			}
		}
	}
	s.compose = ""
	s.result = nil
	s.pending = nil

	s.cancel()
	s.config.Host.Close()
}
