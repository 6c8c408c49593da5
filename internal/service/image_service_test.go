package service

import (
	"bytes"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brgyhealth/bhc_api/internal/utils"
)

func TestCompressIsDeterministic(t *testing.T) {
	svc := NewImageService()
	input := testJPEG(t, 800, 600)

	first, err := svc.Compress(input)
	require.NoError(t, err)
	second, err := svc.Compress(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompressDownscalesWideImages(t *testing.T) {
	svc := NewImageService()

	out, err := svc.Compress(testJPEG(t, 2400, 1200))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 600, cfg.Height, "aspect ratio preserved")
}

func TestCompressLeavesSmallImagesAtSize(t *testing.T) {
	svc := NewImageService()

	out, err := svc.Compress(testJPEG(t, 1200, 900))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 900, cfg.Height)
}

func TestCompressRejectsBadInput(t *testing.T) {
	svc := NewImageService()

	_, err := svc.Compress(nil)
	assert.ErrorIs(t, err, utils.ErrCompressionFailed)

	_, err = svc.Compress([]byte("not an image"))
	assert.ErrorIs(t, err, utils.ErrCompressionFailed)

	_, err = svc.Compress(make([]byte, maxImageBytes+1))
	assert.ErrorIs(t, err, utils.ErrCompressionFailed)
}
