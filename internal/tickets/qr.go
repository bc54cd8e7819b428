// Package tickets renders the QR codes printed on e-tickets.
package tickets

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

// QREncoder renders ticket payloads as PNG images
type QREncoder struct {
	level qrcode.RecoveryLevel
}

func NewQREncoder() *QREncoder {
	return &QREncoder{level: qrcode.Medium}
}

// PNG encodes content into a square PNG of size pixels. Out of range sizes
// are clamped.
func (e *QREncoder) PNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr: empty content")
	}

	qr, err := qrcode.New(content, e.level)
	if err != nil {
		return nil, fmt.Errorf("qr: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, qr.Image(ClampSize(size))); err != nil {
		return nil, fmt.Errorf("qr: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultQRSize
	case size < MinQRSize:
		return MinQRSize
	case size > MaxQRSize:
		return MaxQRSize
	}
	return size
}
