package testutil

import (
	"qrscan-go/internal/encryption"
	"qrscan-go/internal/scan"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() scan.Encryptor {
	return encryption.NewTestEncryptor()
}
