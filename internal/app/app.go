package app

import (
	"fmt"
	"os"
	"time"

	"qrscan-go/internal/config"
	"qrscan-go/internal/encryption"
	"qrscan-go/internal/qr"
	"qrscan-go/internal/scan"
	"qrscan-go/internal/slot"
)

// QRApp is the application layer between the CLI and the scan store.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw strings, and manages slot and log file lifecycle on Close.
type QRApp struct {
	cfg     *config.Config
	slot    scan.Slot
	store   *scan.Store
	logger  scan.Logger
	logFile *os.File
}

// NewQRApp creates a fully wired QRApp from the given config.
// operation identifies the CLI command being run (e.g. "Scan", "History").
// passphrase is invoked at most once, the first time an encrypted history
// slot needs the private key unlocked; it may be nil when the history is
// not encrypted. The caller must call Close when done.
func NewQRApp(cfg *config.Config, operation string, passphrase func() (string, error)) (*QRApp, error) {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	sl, err := slot.NewSlotFromConfig(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("creating history slot: %w", err)
	}

	if cfg.History.Encrypted {
		if !enc.IsConfigured() {
			sl.Close()
			return nil, fmt.Errorf("history is marked encrypted but no key pair exists: run `qrscan config init --encrypt` first")
		}
		sl = slot.NewEncrypted(sl, enc, passphrase)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		sl.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	adapter := &slogAdapter{l: logger}
	adapter.Debug("operation started", "operation", operation)

	store := scan.NewStore(sl, cfg.History.Slot, adapter, scan.RealClock{}, scan.UUIDGenerator{})

	return &QRApp{
		cfg:     cfg,
		slot:    sl,
		store:   store,
		logger:  adapter,
		logFile: logFile,
	}, nil
}

// ScanImage decodes the QR code in the image file at path and records its
// content in the history. inserted is false when the content was already
// present.
func (a *QRApp) ScanImage(path string) (rec scan.Record, inserted bool, err error) {
	content, err := qr.DecodeFile(path)
	if err != nil {
		a.logger.Warn("image scan failed", "path", path, "error", err)
		return scan.Record{}, false, fmt.Errorf("scanning %s: %w", path, err)
	}
	return a.store.Add(content)
}

// Add records raw content in the history as if it had been scanned.
func (a *QRApp) Add(content string) (scan.Record, bool, error) {
	return a.store.Add(content)
}

// Generate normalizes text for the given category and renders it as a QR
// code PNG at outPath. size and level fall back to the configured defaults
// when zero-valued. Returns the encoded content, which may differ from text
// when normalization added a scheme prefix.
func (a *QRApp) Generate(text string, cat scan.Category, outPath string, size int, level string) (string, error) {
	content := scan.ForGeneration(text, cat)

	opts := qr.Options{Size: size, Level: level}
	if opts.Size == 0 {
		opts.Size = a.cfg.Generate.Size
	}
	if opts.Level == "" {
		opts.Level = a.cfg.Generate.Level
	}

	if err := qr.WriteFile(outPath, content, opts); err != nil {
		return "", fmt.Errorf("writing qr image: %w", err)
	}

	a.logger.Info("qr code generated", "path", outPath, "category", string(cat))
	return content, nil
}

// History returns the most recent records, newest first.
// limit <= 0 returns the full history.
func (a *QRApp) History(limit int) []scan.Record {
	records := a.store.Records()
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}

// Search returns the records whose content contains query,
// case-insensitively, newest first.
func (a *QRApp) Search(query string) []scan.Record {
	return a.store.Search(query)
}

// Get returns the record with the given id.
func (a *QRApp) Get(id string) (scan.Record, bool) {
	return a.store.Get(id)
}

// Delete removes the record with the given id and reports whether a
// removal occurred.
func (a *QRApp) Delete(id string) (bool, error) {
	return a.store.Delete(id)
}

// Clear empties the history and returns the number of records removed.
func (a *QRApp) Clear() (int, error) {
	n := a.store.Len()
	if err := a.store.Clear(); err != nil {
		return n, err
	}
	return n, nil
}

// Store returns the underlying history store, for callers that need
// subscriptions or direct access (the HTTP API).
func (a *QRApp) Store() *scan.Store {
	return a.store
}

// Config returns the config the app was built from.
func (a *QRApp) Config() *config.Config {
	return a.cfg
}

// Logger returns the operation-scoped logger.
func (a *QRApp) Logger() scan.Logger {
	return a.logger
}

// Close releases the history slot and the log file.
func (a *QRApp) Close() error {
	var firstErr error

	if err := a.slot.Close(); err != nil {
		firstErr = fmt.Errorf("closing history slot: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
