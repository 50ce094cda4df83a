package scan

import "io"

// Encryptor protects slot payloads at rest. Scan history can carry secrets
// (a WIFI: payload embeds the network password verbatim), so the history
// slot is optionally encrypted. Encryption uses the public key only — no
// user interaction on writes. Decryption requires a passphrase to unlock
// the private key, producing a DecryptionContext for the rest of the
// process.
type Encryptor interface {
	// Setup performs one-time key generation. Called during
	// `qrscan config init --encrypt`. Generates a key pair, stores the
	// public key in plaintext, and encrypts the private key with the
	// provided passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	// Uses the public key only — no passphrase required.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key using the passphrase and returns a
	// DecryptionContext that can decrypt slot payloads. Returns an error
	// if the passphrase is incorrect.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if both key files exist at configured paths.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for the
// duration of the process. Created by Encryptor.Unlock; the unlocked key is
// never written to disk.
type DecryptionContext interface {
	// Decrypt decrypts data read from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
