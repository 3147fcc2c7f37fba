package pix

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// QRBase64 renders payload as a PNG QR code and returns it base64 encoded.
func QRBase64(payload string) (string, error) {
	if payload == "" {
		return "", fmt.Errorf("payload is empty")
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("qrcode.Encode: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
