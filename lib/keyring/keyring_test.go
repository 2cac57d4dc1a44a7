// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"

	"github.com/bureau-foundation/glass/lib/sealed"
	"github.com/bureau-foundation/glass/lib/secret"
)

func TestMain(m *testing.M) {
	sealed.ScryptWorkFactor = 10
	os.Exit(m.Run())
}

func buffer(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	result, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	t.Cleanup(func() { result.Close() })
	return result
}

func createKeyring(t *testing.T) (*Keyring, string) {
	t.Helper()
	directory := filepath.Join(t.TempDir(), "keyring")
	keyring, err := Create(directory, buffer(t, "hunter2"), "Alice <alice@example.com>", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return keyring, directory
}

func TestCreateIsUnlockedAndPersists(t *testing.T) {
	keyring, directory := createKeyring(t)
	if keyring.IsLocked() {
		t.Fatal("freshly created keyring is locked")
	}
	identities, err := keyring.Identities()
	if err != nil || len(identities) != 1 {
		t.Fatalf("Identities() = %d, %v; want 1 identity", len(identities), err)
	}

	reopened, err := Open(directory, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !reopened.IsLocked() {
		t.Error("reopened keyring should start locked")
	}
	own := reopened.PrivateKeys()
	if _, ok := own["Alice <alice@example.com>"]; !ok {
		t.Errorf("PrivateKeys() = %v, want Alice's identity", own)
	}

	data, err := os.ReadFile(filepath.Join(directory, IndexFile))
	if err != nil {
		t.Fatalf("reading index: %v", err)
	}
	if !strings.HasPrefix(string(data), "//") {
		t.Error("index should begin with a comment line")
	}
}

func TestCreateRefusesExisting(t *testing.T) {
	_, directory := createKeyring(t)
	if _, err := Create(directory, buffer(t, "again"), "Bob <b@x>", nil); err == nil {
		t.Fatal("Create over an existing keyring succeeded")
	}
}

func TestUnlockWrongPassphraseLeavesLocked(t *testing.T) {
	_, directory := createKeyring(t)
	keyring, err := Open(directory, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for attempt := 0; attempt < 3; attempt++ {
		if err := keyring.Unlock(buffer(t, "wrong")); !errors.Is(err, ErrBadPassphrase) {
			t.Fatalf("attempt %d: Unlock(wrong) = %v, want ErrBadPassphrase", attempt, err)
		}
		if !keyring.IsLocked() {
			t.Fatalf("attempt %d: keyring unlocked by a wrong passphrase", attempt)
		}
	}
	if _, err := keyring.Identities(); !errors.Is(err, ErrLocked) {
		t.Fatalf("Identities() while locked = %v, want ErrLocked", err)
	}

	if err := keyring.Unlock(buffer(t, "hunter2")); err != nil {
		t.Fatalf("Unlock(right): %v", err)
	}
	if keyring.IsLocked() {
		t.Fatal("keyring still locked after correct passphrase")
	}

	keyring.Lock()
	if !keyring.IsLocked() {
		t.Fatal("Lock did not lock")
	}
}

func TestUnlockedIdentityDecrypts(t *testing.T) {
	keyring, _ := createKeyring(t)
	publicKey := keyring.PrivateKeys()["Alice <alice@example.com>"]

	armored, err := sealed.Encrypt([]byte("note to self"), []string{publicKey})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	identities, err := keyring.Identities()
	if err != nil {
		t.Fatalf("Identities: %v", err)
	}
	plaintext, err := sealed.Decrypt(armored, identities...)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	defer plaintext.Close()
	if got := sealed.Text(plaintext); got != "note to self" {
		t.Errorf("Decrypt = %q", got)
	}
}

func TestImport(t *testing.T) {
	keyring, directory := createKeyring(t)
	bob, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer bob.Close()

	if err := keyring.Import("Bob <bob@example.com>", bob.PublicKey); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := keyring.Import("Bob <bob@example.com>", bob.PublicKey); err != nil {
		t.Fatalf("re-Import: %v", err)
	}
	if err := keyring.Import("Carol <c@x>", "age1garbage"); err == nil {
		t.Error("Import of a malformed key succeeded")
	}
	own := keyring.PrivateKeys()["Alice <alice@example.com>"]
	if err := keyring.Import("Alice <alice@example.com>", bob.PublicKey); err == nil {
		t.Error("Import over an own identity succeeded")
	}
	if keyring.PrivateKeys()["Alice <alice@example.com>"] != own {
		t.Error("own identity changed after refused import")
	}

	reopened, err := Open(directory, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	public := reopened.PublicKeys()
	if len(public) != 2 || public["Bob <bob@example.com>"] != bob.PublicKey {
		t.Errorf("PublicKeys() = %v", public)
	}
	if _, ok := reopened.PrivateKeys()["Bob <bob@example.com>"]; ok {
		t.Error("imported key listed as an own identity")
	}
	list := reopened.List()
	if list[0].UID != "Alice <alice@example.com>" || list[1].UID != "Bob <bob@example.com>" {
		t.Errorf("List() not sorted: %+v", list)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(t.TempDir(), nil); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Open(empty dir) = %v, want ErrNotInitialized", err)
	}
}

func TestOpenAcceptsCommentsAndTrailingCommas(t *testing.T) {
	bob, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer bob.Close()

	directory := t.TempDir()
	content := "// hand edited\n{\n  \"keys\": [\n    /* bob */ {\"uid\": \"Bob <b@x>\", \"key\": \"" + bob.PublicKey + "\",},\n  ],\n}\n"
	if err := os.WriteFile(filepath.Join(directory, IndexFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	keyring, err := Open(directory, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if keyring.PublicKeys()["Bob <b@x>"] != bob.PublicKey {
		t.Errorf("PublicKeys() = %v", keyring.PublicKeys())
	}
}

func TestParseIdentitiesZeroesEveryEntry(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatal(err)
	}
	entries := []ringEntry{
		{UID: "valid <v@x>", PrivateKey: []byte(identity.String())},
		{UID: "broken <b@x>", PrivateKey: []byte("AGE-SECRET-KEY-NOTAKEY")},
		{UID: "after <a@x>", PrivateKey: []byte(identity.String())},
	}

	if _, err := parseIdentities(entries); err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("parseIdentities error = %v, want one naming the broken entry", err)
	}
	for _, entry := range entries {
		for _, b := range entry.PrivateKey {
			if b != 0 {
				t.Fatalf("entry %q not zeroed", entry.UID)
			}
		}
	}
}
