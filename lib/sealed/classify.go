// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"fmt"
	"strings"

	"filippo.io/age/armor"
)

// Kind is what Classify found in a piece of host content.
type Kind int

const (
	// KindNone means no recognized material.
	KindNone Kind = iota
	// KindMessage is an armored age message.
	KindMessage
	// KindPublicKey is one or more public key blocks.
	KindPublicKey
	// KindDraft is a draft marker written back by save-as-draft.
	KindDraft
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindPublicKey:
		return "public-key"
	case KindDraft:
		return "draft"
	default:
		return "none"
	}
}

const (
	draftHeader     = "-----BEGIN GLASS DRAFT-----"
	draftFooter     = "-----END GLASS DRAFT-----"
	publicKeyHeader = "-----BEGIN GLASS PUBLIC KEY-----"
	publicKeyFooter = "-----END GLASS PUBLIC KEY-----"
)

// Classify inspects content. A draft marker wins over the armored
// message it contains; a message wins over key blocks.
func Classify(content string) Kind {
	switch {
	case IsDraft(content):
		return KindDraft
	case containsBlock(content, armor.Header, armor.Footer):
		return KindMessage
	case containsBlock(content, publicKeyHeader, publicKeyFooter):
		return KindPublicKey
	default:
		return KindNone
	}
}

// IsDraft reports whether content carries a draft marker around an
// armored message.
func IsDraft(content string) bool {
	inner, ok := between(content, draftHeader, draftFooter)
	return ok && containsBlock(inner, armor.Header, armor.Footer)
}

// WrapDraft surrounds an armored message with the draft marker.
func WrapDraft(armored string) string {
	return draftHeader + "\n" + strings.TrimSpace(armored) + "\n" + draftFooter + "\n"
}

// ExtractMessage returns the first armored message in content,
// normalized to the exact armor lines age expects. Text around the
// block (quoted reply chrome, draft markers) is discarded. Lines inside
// the block are trimmed, which undoes the indentation mail clients add.
func ExtractMessage(content string) (string, bool) {
	inner, ok := between(content, armor.Header, armor.Footer)
	if !ok {
		return "", false
	}
	var builder strings.Builder
	builder.WriteString(armor.Header)
	builder.WriteByte('\n')
	for _, line := range strings.Split(inner, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), ">"))
		if line == "" {
			continue
		}
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	builder.WriteString(armor.Footer)
	builder.WriteByte('\n')
	return builder.String(), true
}

// PublicKeyBlock is one parsed public key block.
type PublicKeyBlock struct {
	// UID is the human identity, conventionally "Name <email>".
	UID string
	// Key is the age1... recipient.
	Key string
}

// FormatPublicKey renders a public key block for export.
func FormatPublicKey(uid, key string) string {
	return fmt.Sprintf("%s\nuid: %s\nkey: %s\n%s\n", publicKeyHeader, uid, key, publicKeyFooter)
}

// ParsePublicKeys extracts every public key block in content. A block
// missing either field, or carrying a malformed key, fails the whole
// parse so that a partial import never happens silently.
func ParsePublicKeys(content string) ([]PublicKeyBlock, error) {
	var blocks []PublicKeyBlock
	remaining := content
	for {
		start := strings.Index(remaining, publicKeyHeader)
		if start < 0 {
			break
		}
		rest := remaining[start+len(publicKeyHeader):]
		end := strings.Index(rest, publicKeyFooter)
		if end < 0 {
			return nil, fmt.Errorf("sealed: unterminated public key block")
		}

		var block PublicKeyBlock
		for _, line := range strings.Split(rest[:end], "\n") {
			name, value, found := strings.Cut(strings.TrimSpace(line), ":")
			if !found {
				continue
			}
			switch strings.TrimSpace(name) {
			case "uid":
				block.UID = strings.TrimSpace(value)
			case "key":
				block.Key = strings.TrimSpace(value)
			}
		}
		if block.UID == "" || block.Key == "" {
			return nil, fmt.Errorf("sealed: public key block %d lacks uid or key", len(blocks)+1)
		}
		if err := ValidatePublicKey(block.Key); err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
		remaining = rest[end+len(publicKeyFooter):]
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("sealed: no public key blocks found")
	}
	return blocks, nil
}

func containsBlock(content, header, footer string) bool {
	_, ok := between(content, header, footer)
	return ok
}

// between returns the text strictly between the first header and the
// next footer after it.
func between(content, header, footer string) (string, bool) {
	start := strings.Index(content, header)
	if start < 0 {
		return "", false
	}
	rest := content[start+len(header):]
	end := strings.Index(rest, footer)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
