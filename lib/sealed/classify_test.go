// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"strings"
	"testing"
)

const fakeArmor = "-----BEGIN AGE ENCRYPTED FILE-----\nYWdlLWVuY3J5cHRpb24ub3JnL3YxCg==\n-----END AGE ENCRYPTED FILE-----\n"

func TestClassify(t *testing.T) {
	key := "age1ql3z7hjy54pw3hyww5ayyfg7zqgvc7w3j2elw8zmrj2kg5sfn9aqmcac8p"
	tests := []struct {
		name    string
		content string
		want    Kind
	}{
		{"empty", "", KindNone},
		{"plain text", "hello there", KindNone},
		{"message", "see below\n" + fakeArmor, KindMessage},
		{"draft", WrapDraft(fakeArmor), KindDraft},
		{"public key", FormatPublicKey("Alice <a@x>", key), KindPublicKey},
		{"message beats key", FormatPublicKey("Alice <a@x>", key) + fakeArmor, KindMessage},
		{"unterminated message", "-----BEGIN AGE ENCRYPTED FILE-----\nabc", KindNone},
		{"draft marker without message", "-----BEGIN GLASS DRAFT-----\nnothing\n-----END GLASS DRAFT-----", KindNone},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.content); got != test.want {
				t.Errorf("Classify() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestExtractMessageNormalizes(t *testing.T) {
	quoted := "> -----BEGIN AGE ENCRYPTED FILE-----\n>   YWdlLWVuY3J5cHRpb24ub3JnL3YxCg==\n>\n> -----END AGE ENCRYPTED FILE-----\ntrailing"
	got, ok := ExtractMessage(quoted)
	if !ok {
		t.Fatal("ExtractMessage() found nothing")
	}
	if got != fakeArmor {
		t.Errorf("ExtractMessage() = %q, want %q", got, fakeArmor)
	}
	if _, ok := ExtractMessage("no armor here"); ok {
		t.Error("ExtractMessage(plain) reported a message")
	}
}

func TestParsePublicKeys(t *testing.T) {
	first, _ := generate(t)
	second, _ := generate(t)
	content := "intro\n" + FormatPublicKey("Alice <a@x>", first.PublicKey) +
		"between\n" + FormatPublicKey("Bob <b@x>", second.PublicKey)

	blocks, err := ParsePublicKeys(content)
	if err != nil {
		t.Fatalf("ParsePublicKeys() error: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("ParsePublicKeys() returned %d blocks, want 2", len(blocks))
	}
	if blocks[0].UID != "Alice <a@x>" || blocks[0].Key != first.PublicKey {
		t.Errorf("blocks[0] = %+v", blocks[0])
	}
	if blocks[1].UID != "Bob <b@x>" || blocks[1].Key != second.PublicKey {
		t.Errorf("blocks[1] = %+v", blocks[1])
	}
}

func TestParsePublicKeysRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"none":         "nothing here",
		"missing key":  "-----BEGIN GLASS PUBLIC KEY-----\nuid: a\n-----END GLASS PUBLIC KEY-----",
		"bad key":      FormatPublicKey("a", "age1notakey"),
		"unterminated": "-----BEGIN GLASS PUBLIC KEY-----\nuid: a\nkey: b\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePublicKeys(content); err == nil {
				t.Error("ParsePublicKeys() succeeded, want error")
			}
		})
	}
}

func TestWrapDraftRoundTrip(t *testing.T) {
	wrapped := WrapDraft(fakeArmor)
	if !strings.HasPrefix(wrapped, draftHeader) || !strings.HasSuffix(wrapped, draftFooter+"\n") {
		t.Errorf("WrapDraft() = %q", wrapped)
	}
	got, ok := ExtractMessage(wrapped)
	if !ok || got != fakeArmor {
		t.Errorf("ExtractMessage(WrapDraft()) = %q, %v", got, ok)
	}
}
