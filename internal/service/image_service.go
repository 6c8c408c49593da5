package service

import (
	"bytes"
	"image"
	"image/jpeg"

	_ "image/gif" // registered decoders for common raster formats
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/brgyhealth/bhc_api/internal/utils"
)

const (
	// maxImageWidth is the threshold above which uploads are downscaled.
	maxImageWidth = 1200
	// jpegQuality is the fixed re-encode quality.
	jpegQuality = 85
	// maxImageBytes caps accepted upload size.
	maxImageBytes = 10 << 20 // 10MB
)

// ImageService compresses identity-document photos before they are sent to
// the OCR service.
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Compress decodes the input, downscales proportionally when the width
// exceeds 1200px, and re-encodes as JPEG at quality 85. The operation is
// deterministic: the same input always yields the same output bytes.
func (s *ImageService) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data) > maxImageBytes {
		return nil, utils.ErrCompressionFailed
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, utils.ErrCompressionFailed
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxImageWidth {
		// Preserve aspect ratio.
		newWidth := maxImageWidth
		newHeight := height * maxImageWidth / width
		if newHeight < 1 {
			newHeight = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, utils.ErrCompressionFailed
	}
	if buf.Len() == 0 {
		return nil, utils.ErrCompressionFailed
	}
	return buf.Bytes(), nil
}
