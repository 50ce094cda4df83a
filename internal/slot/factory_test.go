package slot

import (
	"testing"

	"qrscan-go/internal/config"
)

func TestNewSlotFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.HistoryConfig
		wantErr bool
	}{
		{
			name:    "memory slot",
			cfg:     config.HistoryConfig{Type: "memory"},
			wantErr: false,
		},
		{
			name:    "filesystem slot",
			cfg:     config.HistoryConfig{Type: "filesystem", DataDir: t.TempDir()},
			wantErr: false,
		},
		{
			name:    "empty type defaults to filesystem",
			cfg:     config.HistoryConfig{DataDir: t.TempDir()},
			wantErr: false,
		},
		{
			name:    "filesystem slot requires data_dir",
			cfg:     config.HistoryConfig{Type: "filesystem"},
			wantErr: true,
		},
		{
			name:    "sqlite slot",
			cfg:     config.HistoryConfig{Type: "sqlite", DataDir: t.TempDir()},
			wantErr: false,
		},
		{
			name:    "sqlite slot requires data_dir",
			cfg:     config.HistoryConfig{Type: "sqlite"},
			wantErr: true,
		},
		{
			name: "s3 slot",
			cfg: config.HistoryConfig{
				Type:        "s3",
				S3Bucket:    "scan-backups",
				S3Region:    "eu-west-1",
				S3Endpoint:  "http://127.0.0.1:9000",
				S3AccessKey: "test-access",
				S3SecretKey: "test-secret",
			},
			wantErr: false,
		},
		{
			name:    "s3 slot requires bucket",
			cfg:     config.HistoryConfig{Type: "s3", S3Region: "eu-west-1"},
			wantErr: true,
		},
		{
			name:    "unknown slot type",
			cfg:     config.HistoryConfig{Type: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSlotFromConfig(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Errorf("NewSlotFromConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if got == nil {
					t.Fatal("NewSlotFromConfig() returned nil slot")
				}
				got.Close()
			}
		})
	}
}
