package qr

import (
	"errors"
	"fmt"
	"image"
	"os"

	// Register decoders for the formats camera exports typically use.
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoCode reports that the image decoded fine but contains no readable
// QR code.
var ErrNoCode = errors.New("no qr code found in image")

// Decode scans img for a QR code and returns its decoded text.
func Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("preparing image: %w", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		if _, ok := err.(gozxing.NotFoundException); ok {
			return "", ErrNoCode
		}
		return "", fmt.Errorf("decoding qr code: %w", err)
	}

	return result.GetText(), nil
}

// DecodeFile reads a PNG or JPEG file and returns the text of the QR code
// it contains.
func DecodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decoding image %s: %w", path, err)
	}

	return Decode(img)
}
