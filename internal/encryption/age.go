// Package encryption protects history payloads at rest. Scan content is
// routinely sensitive (a WIFI: payload carries the network password in
// clear text), so a history slot that leaves the machine gets wrapped in an
// encryptor before any bytes reach the backend.
package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"qrscan-go/internal/config"
	"qrscan-go/internal/scan"
)

// AgeEncryptor encrypts history payloads with an age X25519 key pair. The
// recipient (public) key sits on disk in plain text so writes never need a
// passphrase; the identity (private) key is itself age-encrypted under the
// user's passphrase with scrypt and is only opened when history must be
// read back.
type AgeEncryptor struct {
	recipientPath string
	identityPath  string
}

var _ scan.Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor builds an encryptor over the key locations in cfg. The
// key files need not exist yet; Setup creates them.
func NewAgeEncryptor(cfg config.EncryptionConfig) *AgeEncryptor {
	return &AgeEncryptor{
		recipientPath: cfg.PublicKeyPath,
		identityPath:  cfg.PrivateKeyPath,
	}
}

// Setup generates a fresh X25519 key pair and writes both halves to disk.
// Running Setup over an existing pair replaces it, which orphans any
// history encrypted to the old keys.
func (e *AgeEncryptor) Setup(passphrase string) error {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	if err := e.writeRecipient(id.Recipient()); err != nil {
		return err
	}
	return e.writeIdentity(id, passphrase)
}

// writeRecipient stores the public half in plain text.
func (e *AgeEncryptor) writeRecipient(r *age.X25519Recipient) error {
	if err := os.MkdirAll(filepath.Dir(e.recipientPath), 0700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(e.recipientPath, []byte(r.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing recipient key: %w", err)
	}
	return nil
}

// writeIdentity seals the private half under the passphrase before it
// touches disk.
func (e *AgeEncryptor) writeIdentity(id *age.X25519Identity, passphrase string) error {
	if err := os.MkdirAll(filepath.Dir(e.identityPath), 0700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	f, err := os.OpenFile(e.identityPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating identity file: %w", err)
	}
	defer f.Close()

	scrypt, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("deriving passphrase recipient: %w", err)
	}

	w, err := age.Encrypt(f, scrypt)
	if err != nil {
		return fmt.Errorf("encrypting identity: %w", err)
	}
	if _, err := io.WriteString(w, id.String()+"\n"); err != nil {
		return fmt.Errorf("writing identity: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("sealing identity file: %w", err)
	}

	return nil
}

// Encrypt writes the age ciphertext of r to w using the on-disk recipient
// key. A WIFI password buried in the payload is unrecoverable from the
// output without the identity key.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	rec, err := e.readRecipient()
	if err != nil {
		return err
	}

	cw, err := age.Encrypt(w, rec)
	if err != nil {
		return fmt.Errorf("starting encryption: %w", err)
	}
	if _, err := io.Copy(cw, r); err != nil {
		return fmt.Errorf("encrypting payload: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("sealing payload: %w", err)
	}

	return nil
}

// Unlock opens the identity file with the passphrase and returns a context
// that can decrypt history payloads. A wrong passphrase fails here, before
// any payload is touched.
func (e *AgeEncryptor) Unlock(passphrase string) (scan.DecryptionContext, error) {
	sealed, err := os.ReadFile(e.identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}

	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("deriving passphrase identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(sealed), scrypt)
	if err != nil {
		return nil, fmt.Errorf("unlocking identity: %w", err)
	}

	ids, err := age.ParseIdentities(r)
	if err != nil {
		return nil, fmt.Errorf("parsing identity: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("identity file %s holds no identities", e.identityPath)
	}

	return &AgeDecryptionContext{identity: ids[0]}, nil
}

// IsConfigured reports whether Setup has produced both key files.
func (e *AgeEncryptor) IsConfigured() bool {
	for _, p := range []string{e.recipientPath, e.identityPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// readRecipient loads the recipient key Setup wrote.
func (e *AgeEncryptor) readRecipient() (age.Recipient, error) {
	data, err := os.ReadFile(e.recipientPath)
	if err != nil {
		return nil, fmt.Errorf("reading recipient key: %w", err)
	}

	recs, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing recipient key: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("recipient file %s holds no keys", e.recipientPath)
	}

	return recs[0], nil
}

// AgeDecryptionContext holds an unlocked identity. One Unlock serves any
// number of Decrypt calls, so the passphrase is asked for at most once per
// run.
type AgeDecryptionContext struct {
	identity age.Identity
}

var _ scan.DecryptionContext = (*AgeDecryptionContext)(nil)

// Decrypt streams the plaintext of the age payload in r to w.
func (c *AgeDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	pr, err := age.Decrypt(r, c.identity)
	if err != nil {
		return fmt.Errorf("opening payload: %w", err)
	}
	if _, err := io.Copy(w, pr); err != nil {
		return fmt.Errorf("decrypting payload: %w", err)
	}
	return nil
}
