// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package glass

// Reader is a read-only surface. Its content is handed to the frame
// once, at launch, and never changes.
type Reader struct {
	*core
}

var _ Surface = (*Reader)(nil)

// NewReader returns an uninstalled read-only surface showing content.
func NewReader(cfg Config, content string) *Reader {
	return &Reader{core: newCore(cfg, variant{
		name:   "reader",
		init:   FrameInit{Content: content},
		resize: func(requested int) int { return max(requested, 0) },
	})}
}
