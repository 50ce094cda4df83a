package encryption

import (
	"bytes"
	"fmt"
	"io"

	"qrscan-go/internal/scan"
)

// fakeHeader marks bytes that went through the TestEncryptor. Eight bytes,
// so a truncated payload is detectable on the way back.
var fakeHeader = []byte("QRENC\x00\x00\x00")

// TestEncryptor stands in for AgeEncryptor in slot and app tests. It tags
// payloads with fakeHeader instead of doing real crypto: the code under
// test still sees "ciphertext" that differs from the stored history bytes
// and round-trips exactly, but no key files or passphrases are involved.
type TestEncryptor struct {
	setupDone bool
}

var _ scan.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor returns a TestEncryptor. It reports itself configured
// from the start; Setup is optional.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

// Setup records the call and succeeds; there are no keys to generate.
func (e *TestEncryptor) Setup(passphrase string) error {
	e.setupDone = true
	return nil
}

// Encrypt prefixes the payload with fakeHeader.
func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(fakeHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying payload: %w", err)
	}
	return nil
}

// Unlock accepts any passphrase.
func (e *TestEncryptor) Unlock(passphrase string) (scan.DecryptionContext, error) {
	return &TestDecryptionContext{}, nil
}

// IsConfigured always reports true.
func (e *TestEncryptor) IsConfigured() bool {
	return true
}

// TestDecryptionContext undoes TestEncryptor by stripping fakeHeader. A
// payload that never went through Encrypt is rejected.
type TestDecryptionContext struct{}

var _ scan.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	got := make([]byte, len(fakeHeader))
	if _, err := io.ReadFull(r, got); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(got, fakeHeader) {
		return fmt.Errorf("payload does not carry the fake encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying payload: %w", err)
	}
	return nil
}
