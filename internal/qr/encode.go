package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Options configure QR code generation.
type Options struct {
	Size  int    // output image edge in pixels; <= 0 selects the default
	Level string // error correction level; empty selects the default
}

const (
	// DefaultSize is the image edge used when Options.Size is unset.
	DefaultSize = 256
	// DefaultLevel is the error correction level used when Options.Level is unset.
	DefaultLevel = "medium"
)

// Encode renders text as a QR code and returns the PNG bytes.
func Encode(text string, opts Options) ([]byte, error) {
	level, err := recoveryLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(text, level, size(opts))
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}
	return png, nil
}

// WriteFile renders text as a QR code and writes a PNG to path.
func WriteFile(path, text string, opts Options) error {
	level, err := recoveryLevel(opts.Level)
	if err != nil {
		return err
	}

	if err := qrcode.WriteFile(text, level, size(opts), path); err != nil {
		return fmt.Errorf("writing qr code to %s: %w", path, err)
	}
	return nil
}

// Levels returns the accepted error correction level names, weakest first.
func Levels() []string {
	return []string{"low", "medium", "high", "highest"}
}

func size(opts Options) int {
	if opts.Size <= 0 {
		return DefaultSize
	}
	return opts.Size
}

func recoveryLevel(name string) (qrcode.RecoveryLevel, error) {
	switch name {
	case "low":
		return qrcode.Low, nil
	case "medium", "":
		return qrcode.Medium, nil
	case "high":
		return qrcode.High, nil
	case "highest":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("unknown error correction level: %q", name)
	}
}
