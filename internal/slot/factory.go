package slot

import (
	"fmt"
	"path/filepath"

	"qrscan-go/internal/config"
	"qrscan-go/internal/scan"
)

// NewSlotFromConfig creates a Slot implementation based on the history config type.
func NewSlotFromConfig(cfg config.HistoryConfig) (scan.Slot, error) {
	switch cfg.Type {
	case "memory":
		return NewMemory(), nil
	case "filesystem", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("filesystem history requires data_dir to be set")
		}
		return NewFileSystem(cfg.DataDir)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite history requires data_dir to be set")
		}
		return NewSQLite(filepath.Join(cfg.DataDir, "slots.db"))
	case "s3":
		return NewS3(S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}
