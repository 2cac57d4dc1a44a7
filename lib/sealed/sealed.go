// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/bureau-foundation/glass/lib/secret"
)

// ErrNoMatchingKey is returned by Decrypt when none of the supplied
// identities can open the message.
var ErrNoMatchingKey = errors.New("sealed: no matching key")

// ErrBadPassphrase is returned by Unseal when the passphrase does not
// open the envelope.
var ErrBadPassphrase = errors.New("sealed: incorrect passphrase")

// ScryptWorkFactor is the log2 scrypt cost used for new passphrase
// envelopes. Tests lower it; production leaves the age default.
var ScryptWorkFactor = 18

// Keypair is a freshly generated X25519 identity.
type Keypair struct {
	// PrivateKey is the AGE-SECRET-KEY-1... encoding.
	PrivateKey *secret.Buffer
	// PublicKey is the age1... recipient string.
	PublicKey string
}

// Close releases the private key.
func (k *Keypair) Close() error {
	if k.PrivateKey == nil {
		return nil
	}
	return k.PrivateKey.Close()
}

// GenerateKeypair creates a new X25519 identity.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating identity: %w", err)
	}
	privateKey, err := secret.NewFromString(identity.String())
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}
	return &Keypair{PrivateKey: privateKey, PublicKey: identity.Recipient().String()}, nil
}

// ParseIdentity parses a private key held in a Buffer. The buffer is
// borrowed, not closed.
func ParseIdentity(privateKey *secret.Buffer) (*age.X25519Identity, error) {
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return identity, nil
}

// ValidatePublicKey reports whether key is a well-formed age recipient.
func ValidatePublicKey(key string) error {
	if _, err := age.ParseX25519Recipient(key); err != nil {
		return fmt.Errorf("invalid public key %q: %w", key, err)
	}
	return nil
}

// Encrypt encrypts plaintext to every recipient and returns the
// armored message.
func Encrypt(plaintext []byte, recipientKeys []string) (string, error) {
	if len(recipientKeys) == 0 {
		return "", fmt.Errorf("sealed: at least one recipient is required")
	}
	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return "", fmt.Errorf("parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}
	return encryptArmored(plaintext, recipients...)
}

// EncryptWithPassphrase encrypts plaintext so that only passphrase
// opens it. The passphrase buffer is borrowed.
func EncryptWithPassphrase(plaintext []byte, passphrase *secret.Buffer) (string, error) {
	recipient, err := scryptRecipient(passphrase)
	if err != nil {
		return "", err
	}
	return encryptArmored(plaintext, recipient)
}

func encryptArmored(plaintext []byte, recipients ...age.Recipient) (string, error) {
	var output bytes.Buffer
	armorWriter := armor.NewWriter(&output)
	writer, err := age.Encrypt(armorWriter, recipients...)
	if err != nil {
		return "", fmt.Errorf("starting encryption: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return "", fmt.Errorf("writing plaintext: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finishing encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return "", fmt.Errorf("finishing armor: %w", err)
	}
	return output.String(), nil
}

// PassphraseIdentity returns an identity that opens messages produced
// by EncryptWithPassphrase with the same passphrase.
func PassphraseIdentity(passphrase *secret.Buffer) (age.Identity, error) {
	if passphrase == nil || passphrase.Len() == 0 {
		return nil, secret.ErrEmpty
	}
	identity, err := age.NewScryptIdentity(passphrase.String())
	if err != nil {
		return nil, fmt.Errorf("building passphrase identity: %w", err)
	}
	return identity, nil
}

// Decrypt opens an armored message with the given identities. The
// returned buffer belongs to the caller; it is nil when the message
// holds no bytes.
func Decrypt(armored string, identities ...age.Identity) (*secret.Buffer, error) {
	message, ok := ExtractMessage(armored)
	if !ok {
		return nil, fmt.Errorf("sealed: no armored message found")
	}
	if len(identities) == 0 {
		return nil, ErrNoMatchingKey
	}

	reader, err := age.Decrypt(armor.NewReader(strings.NewReader(message)), identities...)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, ErrNoMatchingKey
		}
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return readIntoBuffer(reader)
}

// Seal encrypts data under a passphrase in binary (unarmored) form.
func Seal(data []byte, passphrase *secret.Buffer) ([]byte, error) {
	recipient, err := scryptRecipient(passphrase)
	if err != nil {
		return nil, err
	}
	var output bytes.Buffer
	writer, err := age.Encrypt(&output, recipient)
	if err != nil {
		return nil, fmt.Errorf("starting seal: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("writing sealed data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finishing seal: %w", err)
	}
	return output.Bytes(), nil
}

// Unseal opens a Seal envelope. A wrong passphrase yields
// ErrBadPassphrase.
func Unseal(envelope []byte, passphrase *secret.Buffer) (*secret.Buffer, error) {
	identity, err := PassphraseIdentity(passphrase)
	if err != nil {
		return nil, err
	}
	reader, err := age.Decrypt(bytes.NewReader(envelope), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, ErrBadPassphrase
		}
		return nil, fmt.Errorf("unsealing: %w", err)
	}
	return readIntoBuffer(reader)
}

func scryptRecipient(passphrase *secret.Buffer) (*age.ScryptRecipient, error) {
	if passphrase == nil || passphrase.Len() == 0 {
		return nil, secret.ErrEmpty
	}
	recipient, err := age.NewScryptRecipient(passphrase.String())
	if err != nil {
		return nil, fmt.Errorf("building passphrase recipient: %w", err)
	}
	recipient.SetWorkFactor(ScryptWorkFactor)
	return recipient, nil
}

// readIntoBuffer drains reader into a secret.Buffer, zeroing the heap
// staging copy. Empty plaintext yields a nil buffer and nil error.
func readIntoBuffer(reader io.Reader) (*secret.Buffer, error) {
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("reading plaintext: %w", err)
	}
	if len(plaintext) == 0 {
		return nil, nil
	}
	return secret.NewFromBytes(plaintext)
}

// Text returns the contents of a plaintext buffer produced by Decrypt
// or Unseal, treating nil as empty.
func Text(plaintext *secret.Buffer) string {
	if plaintext == nil {
		return ""
	}
	return plaintext.String()
}
