// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"filippo.io/age"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/glass/lib/codec"
	"github.com/bureau-foundation/glass/lib/sealed"
	"github.com/bureau-foundation/glass/lib/secret"
)

const (
	// IndexFile is the public index file name inside a keyring directory.
	IndexFile = "keyring.jsonc"
	// SecretRingFile is the sealed private identity file name.
	SecretRingFile = "secring.age"
)

var (
	// ErrLocked is returned by operations that need private identities
	// while the keyring is locked.
	ErrLocked = errors.New("keyring: locked")

	// ErrBadPassphrase is returned by Unlock when the passphrase does
	// not open the secret ring. The keyring state is unchanged.
	ErrBadPassphrase = errors.New("keyring: incorrect passphrase")

	// ErrNotInitialized is returned by Open when the directory holds no
	// keyring.
	ErrNotInitialized = errors.New("keyring: not initialized")
)

// PublicKey is one entry of the public index.
type PublicKey struct {
	UID string `json:"uid"`
	Key string `json:"key"`
	Own bool   `json:"own,omitempty"`
}

type index struct {
	Keys []PublicKey `json:"keys"`
}

// ringEntry is the CBOR form of one private identity. PrivateKey is
// bytes rather than string so the decoded copy can be zeroed.
type ringEntry struct {
	UID        string `cbor:"uid"`
	PrivateKey []byte `cbor:"private_key"`
}

// Keyring is a keyring directory opened for use. All methods are safe
// for concurrent use.
type Keyring struct {
	directory string
	logger    *slog.Logger

	mu         sync.RWMutex
	keys       []PublicKey
	identities []*age.X25519Identity
}

// Open loads the public index from directory. The returned keyring is
// locked.
func Open(directory string, logger *slog.Logger) (*Keyring, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	keys, err := readIndex(filepath.Join(directory, IndexFile))
	if err != nil {
		return nil, err
	}
	return &Keyring{directory: directory, logger: logger, keys: keys}, nil
}

// Create initializes a new keyring in directory with one freshly
// generated identity for uid, sealed under passphrase. It fails if a
// keyring already exists there. The returned keyring is unlocked.
func Create(directory string, passphrase *secret.Buffer, uid string, logger *slog.Logger) (*Keyring, error) {
	if uid == "" {
		return nil, fmt.Errorf("keyring: uid is required")
	}
	if _, err := os.Stat(filepath.Join(directory, SecretRingFile)); err == nil {
		return nil, fmt.Errorf("keyring: %s already exists in %s", SecretRingFile, directory)
	}
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return nil, fmt.Errorf("creating keyring directory: %w", err)
	}

	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return nil, err
	}
	defer keypair.Close()

	identity, err := sealed.ParseIdentity(keypair.PrivateKey)
	if err != nil {
		return nil, err
	}

	ring, err := codec.Marshal([]ringEntry{{UID: uid, PrivateKey: keypair.PrivateKey.Bytes()}})
	if err != nil {
		return nil, fmt.Errorf("encoding secret ring: %w", err)
	}
	defer secret.Zero(ring)
	envelope, err := sealed.Seal(ring, passphrase)
	if err != nil {
		return nil, fmt.Errorf("sealing secret ring: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(directory, SecretRingFile), envelope, 0o600); err != nil {
		return nil, err
	}

	keyring := &Keyring{directory: directory, logger: logger}
	if keyring.logger == nil {
		keyring.logger = slog.New(slog.DiscardHandler)
	}
	keyring.keys = []PublicKey{{UID: uid, Key: keypair.PublicKey, Own: true}}
	keyring.identities = []*age.X25519Identity{identity}
	if err := keyring.writeIndex(); err != nil {
		return nil, err
	}
	keyring.logger.Info("keyring created", "directory", directory, "uid", uid)
	return keyring, nil
}

// Directory returns the keyring directory.
func (k *Keyring) Directory() string { return k.directory }

// IsLocked reports whether private identities are unavailable.
func (k *Keyring) IsLocked() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.identities == nil
}

// Unlock opens the secret ring with passphrase. The passphrase buffer
// is borrowed; the caller closes it. On failure nothing changes.
func (k *Keyring) Unlock(passphrase *secret.Buffer) error {
	envelope, err := os.ReadFile(filepath.Join(k.directory, SecretRingFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotInitialized
		}
		return fmt.Errorf("reading secret ring: %w", err)
	}

	plaintext, err := sealed.Unseal(envelope, passphrase)
	if err != nil {
		if errors.Is(err, sealed.ErrBadPassphrase) || errors.Is(err, secret.ErrEmpty) {
			return ErrBadPassphrase
		}
		return err
	}
	if plaintext == nil {
		return fmt.Errorf("keyring: secret ring is empty")
	}
	defer plaintext.Close()

	var entries []ringEntry
	if err := codec.Unmarshal(plaintext.Bytes(), &entries); err != nil {
		return fmt.Errorf("decoding secret ring: %w", err)
	}
	identities, err := parseIdentities(entries)
	if err != nil {
		return err
	}

	k.mu.Lock()
	k.identities = identities
	k.mu.Unlock()
	k.logger.Info("keyring unlocked", "identities", len(identities))
	return nil
}

// parseIdentities parses every entry's private key. All key bytes are
// zeroed on return, including entries after a failed one.
func parseIdentities(entries []ringEntry) ([]*age.X25519Identity, error) {
	defer func() {
		for _, entry := range entries {
			secret.Zero(entry.PrivateKey)
		}
	}()
	identities := make([]*age.X25519Identity, 0, len(entries))
	for _, entry := range entries {
		identity, err := age.ParseX25519Identity(string(entry.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("secret ring entry %q: %w", entry.UID, err)
		}
		identities = append(identities, identity)
	}
	return identities, nil
}

// Lock drops the private identities from memory.
func (k *Keyring) Lock() {
	k.mu.Lock()
	wasUnlocked := k.identities != nil
	k.identities = nil
	k.mu.Unlock()
	if wasUnlocked {
		k.logger.Info("keyring locked")
	}
}

// Identities returns the unlocked private identities.
func (k *Keyring) Identities() ([]age.Identity, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.identities == nil {
		return nil, ErrLocked
	}
	result := make([]age.Identity, len(k.identities))
	for index, identity := range k.identities {
		result[index] = identity
	}
	return result, nil
}

// PublicKeys returns every known public key as UID -> key.
func (k *Keyring) PublicKeys() map[string]string {
	return k.collect(func(PublicKey) bool { return true })
}

// PrivateKeys returns the operator's own identities as UID -> public
// key. It is available while locked; the private halves are not.
func (k *Keyring) PrivateKeys() map[string]string {
	return k.collect(func(key PublicKey) bool { return key.Own })
}

// List returns a copy of the index sorted by UID.
func (k *Keyring) List() []PublicKey {
	k.mu.RLock()
	list := append([]PublicKey(nil), k.keys...)
	k.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].UID < list[j].UID })
	return list
}

func (k *Keyring) collect(include func(PublicKey) bool) map[string]string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	result := make(map[string]string)
	for _, key := range k.keys {
		if include(key) {
			result[key.UID] = key.Key
		}
	}
	return result
}

// Import adds or replaces the public key for uid and persists the
// index. Importing over one of the operator's own UIDs is refused.
func (k *Keyring) Import(uid, key string) error {
	if uid == "" {
		return fmt.Errorf("keyring: uid is required")
	}
	if err := sealed.ValidatePublicKey(key); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	replaced := false
	for index := range k.keys {
		if k.keys[index].UID != uid {
			continue
		}
		if k.keys[index].Own {
			return fmt.Errorf("keyring: %q is an own identity and cannot be replaced by import", uid)
		}
		k.keys[index].Key = key
		replaced = true
	}
	if !replaced {
		k.keys = append(k.keys, PublicKey{UID: uid, Key: key})
	}
	if err := k.writeIndexLocked(); err != nil {
		return err
	}
	k.logger.Info("public key imported", "uid", uid, "replaced", replaced)
	return nil
}

func (k *Keyring) writeIndex() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.writeIndexLocked()
}

const indexPreamble = "// glass public keyring. Edit with care: entries marked \"own\"\n// must match identities in " + SecretRingFile + ".\n"

func (k *Keyring) writeIndexLocked() error {
	data, err := json.MarshalIndent(index{Keys: k.keys}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding keyring index: %w", err)
	}
	content := append([]byte(indexPreamble), data...)
	content = append(content, '\n')
	return writeFileAtomic(filepath.Join(k.directory, IndexFile), content, 0o644)
}

func readIndex(path string) ([]PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var parsed index
	if err := json.Unmarshal(jsonc.ToJSON(data), &parsed); err != nil {
		return nil, fmt.Errorf("%s: parsing keyring index: %w", path, err)
	}
	for _, key := range parsed.Keys {
		if err := sealed.ValidatePublicKey(key.Key); err != nil {
			return nil, fmt.Errorf("%s: entry %q: %w", path, key.UID, err)
		}
	}
	return parsed.Keys, nil
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	temporary := path + ".tmp"
	if err := os.WriteFile(temporary, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", temporary, err)
	}
	if err := os.Rename(temporary, path); err != nil {
		os.Remove(temporary)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
