package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

func Decode(r io.Reader) (image.Image, error) {
	if r == nil {
		return nil, errors.New("nil-reader provided to Decode")
	}
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image: %w", err)
	}
	return img, nil
}

func EncodeJPEG(img image.Image, quality int) (io.Reader, int64, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, 0, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return &buf, int64(buf.Len()), nil
}

func EncodePNG(img image.Image) (io.Reader, int64, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, 0, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return &buf, int64(buf.Len()), nil
}
