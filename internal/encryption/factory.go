package encryption

import (
	"fmt"

	"qrscan-go/internal/config"
	"qrscan-go/internal/scan"
)

// NewEncryptorFromConfig picks the encryptor for cfg.Type: "age" (the
// default) for real key-pair encryption of history payloads, "test" for
// the header-tagging fake used by slot and app tests.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (scan.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
