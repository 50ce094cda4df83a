package slot

import (
	"bytes"
	"fmt"
	"sync"

	"qrscan-go/internal/scan"
)

// Encrypted wraps another Slot and encrypts every value at rest. Writes use
// the public key only, so recording scans never prompts for a passphrase.
// The first read unlocks the private key via the passphrase callback and
// keeps the decryption context in memory for the rest of the process.
type Encrypted struct {
	inner      scan.Slot
	enc        scan.Encryptor
	passphrase func() (string, error)

	mu     sync.Mutex
	decCtx scan.DecryptionContext
}

// NewEncrypted wraps inner with at-rest encryption. passphrase is called at
// most once, on the first read.
func NewEncrypted(inner scan.Slot, enc scan.Encryptor, passphrase func() (string, error)) *Encrypted {
	return &Encrypted{
		inner:      inner,
		enc:        enc,
		passphrase: passphrase,
	}
}

// Read returns the decrypted value of the named slot.
func (e *Encrypted) Read(name string) ([]byte, error) {
	ciphertext, err := e.inner.Read(name)
	if err != nil {
		return nil, err
	}

	decCtx, err := e.unlock()
	if err != nil {
		return nil, err
	}

	var plaintext bytes.Buffer
	if err := decCtx.Decrypt(bytes.NewReader(ciphertext), &plaintext); err != nil {
		return nil, fmt.Errorf("decrypting slot %q: %w", name, err)
	}
	return plaintext.Bytes(), nil
}

// Write encrypts data and stores the ciphertext in the named slot.
func (e *Encrypted) Write(name string, data []byte) error {
	var ciphertext bytes.Buffer
	if err := e.enc.Encrypt(bytes.NewReader(data), &ciphertext); err != nil {
		return fmt.Errorf("encrypting slot %q: %w", name, err)
	}
	return e.inner.Write(name, ciphertext.Bytes())
}

// Close closes the wrapped slot store.
func (e *Encrypted) Close() error {
	return e.inner.Close()
}

// unlock returns the cached decryption context, prompting for the
// passphrase and unlocking the private key on first use.
func (e *Encrypted) unlock() (scan.DecryptionContext, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.decCtx != nil {
		return e.decCtx, nil
	}

	pass, err := e.passphrase()
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}

	decCtx, err := e.enc.Unlock(pass)
	if err != nil {
		return nil, fmt.Errorf("unlocking private key: %w", err)
	}

	e.decCtx = decCtx
	return decCtx, nil
}

// Compile-time check that Encrypted implements scan.Slot interface
var _ scan.Slot = (*Encrypted)(nil)
