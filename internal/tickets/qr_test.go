package tickets

import (
	"bytes"
	"image/png"
	"testing"

	"servetix/internal/purchases"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ purchases.QREncoder = (*QREncoder)(nil)

func TestPNG(t *testing.T) {
	out, err := NewQREncoder().PNG("SERVETIX-AII000123-12", 128)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())
}

func TestPNGRejectsEmptyContent(t *testing.T) {
	_, err := NewQREncoder().PNG("", 128)
	assert.Error(t, err)
}

func TestClampSize(t *testing.T) {
	assert.Equal(t, DefaultQRSize, ClampSize(0))
	assert.Equal(t, MinQRSize, ClampSize(10))
	assert.Equal(t, 300, ClampSize(300))
	assert.Equal(t, MaxQRSize, ClampSize(5000))
}
