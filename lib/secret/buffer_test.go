// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromBytesMovesSource(t *testing.T) {
	source := []byte("correct horse battery staple")
	want := string(source)

	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	for index, value := range source {
		if value != 0 {
			t.Fatalf("source[%d] = %d after NewFromBytes, want 0", index, value)
		}
	}
}

func TestNewFromBytesEmpty(t *testing.T) {
	_, err := NewFromBytes(nil)
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("NewFromBytes(nil) error = %v, want ErrEmpty", err)
	}
}

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -4} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d) succeeded, want error", size)
		}
	}
}

func TestEqual(t *testing.T) {
	buffer, err := NewFromString("hunter2")
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	defer buffer.Close()

	if !buffer.Equal([]byte("hunter2")) {
		t.Error("Equal(same) = false")
	}
	if buffer.Equal([]byte("hunter3")) {
		t.Error("Equal(different) = true")
	}
}

func TestCloseIsIdempotentAndZeroes(t *testing.T) {
	buffer, err := NewFromString("short-lived")
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}

	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if !buffer.Closed() {
		t.Error("Closed() = false after Close")
	}
	if buffer.region != nil {
		t.Error("region still mapped after Close")
	}
}

func TestAccessAfterClosePanics(t *testing.T) {
	buffer, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buffer.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("Bytes() after Close did not panic")
		}
	}()
	buffer.Bytes()
}

func TestReadPassphraseFromFile(t *testing.T) {
	directory := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{name: "plain", content: "open sesame", want: "open sesame"},
		{name: "trailing newline", content: "open sesame\n", want: "open sesame"},
		{name: "padded", content: "  open sesame \t\n", want: "open sesame"},
		{name: "blank", content: " \n\t", wantErr: ErrEmpty},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(directory, test.name)
			if err := os.WriteFile(path, []byte(test.content), 0o600); err != nil {
				t.Fatalf("writing passphrase file: %v", err)
			}

			buffer, err := ReadPassphrase(path, "passphrase")
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("ReadPassphrase error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadPassphrase: %v", err)
			}
			defer buffer.Close()
			if got := buffer.String(); got != test.want {
				t.Errorf("ReadPassphrase = %q, want %q", got, test.want)
			}
		})
	}
}

func TestReadPassphraseMissingFile(t *testing.T) {
	if _, err := ReadPassphrase(filepath.Join(t.TempDir(), "absent"), "passphrase"); err == nil {
		t.Fatal("ReadPassphrase on a missing file succeeded")
	}
}
