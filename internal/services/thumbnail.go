package service

import (
	"bytes"
	"image/color"

	"github.com/disintegration/imaging"
)

// generateThumbnail renders a JPEG fitting inside 300x300. Transparency is
// flattened onto white so PNG/GIF sources survive the JPEG encode.
func generateThumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fit(img, 300, 300, imaging.Lanczos)
	flat := imaging.New(thumb.Bounds().Dx(), thumb.Bounds().Dy(), color.White)
	flat = imaging.OverlayCenter(flat, thumb, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
