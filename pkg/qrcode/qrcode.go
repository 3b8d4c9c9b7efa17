package qrcode

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// PNG encodes text as a size×size PNG QR code.
func PNG(text string, size int) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("qr content is empty")
	}

	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to build qr code: %w", err)
	}
	return qr.PNG(size)
}

// DataURI returns the PNG as a data:image/png;base64 URI.
func DataURI(text string, size int) (string, error) {
	png, err := PNG(text, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
