package subm

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
	"github.com/wailsapp/mimetype"
)

const (
	MaxImageSize = 5 << 20
	ThumbWidth   = 480
	// MaxImagePixels bounds the decoded size; a small compressed file can
	// declare enormous dimensions.
	MaxImagePixels = 40_000_000

	thumbQuality = 85
)

// checkImage returns the media type and file extension of an acceptable
// proof photo.
func checkImage(content []byte) (mediaType string, ext string, err error) {
	if len(content) == 0 {
		return "", "", newErrImageEmpty()
	}
	if len(content) > MaxImageSize {
		return "", "", newErrImageTooLarge(MaxImageSize >> 20)
	}
	mType := mimetype.Detect(content)
	switch {
	case mType.Is("image/jpeg"):
		mediaType, ext = "image/jpeg", "jpg"
	case mType.Is("image/png"):
		mediaType, ext = "image/png", "png"
	default:
		return "", "", newErrUnsupportedImage(mType.String())
	}
	if err := checkDimensions(content, mediaType); err != nil {
		return "", "", err
	}
	return mediaType, ext, nil
}

// checkDimensions reads only the image header.
func checkDimensions(content []byte, mediaType string) error {
	var cfg image.Config
	var err error
	switch mediaType {
	case "image/jpeg":
		cfg, err = jpeg.DecodeConfig(bytes.NewReader(content))
	case "image/png":
		cfg, err = png.DecodeConfig(bytes.NewReader(content))
	default:
		return newErrUnsupportedImage(mediaType)
	}
	if err != nil {
		return newErrImageCorrupt()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return newErrImageCorrupt()
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return newErrImageDimensionsTooLarge(MaxImagePixels / 1_000_000)
	}
	return nil
}

// makeThumbnail decodes the photo and re-encodes it as a JPEG at most
// maxWidth pixels wide. Narrower photos keep their size.
func makeThumbnail(content []byte, mediaType string, maxWidth uint) ([]byte, error) {
	if err := checkDimensions(content, mediaType); err != nil {
		return nil, err
	}

	var img image.Image
	var err error
	switch mediaType {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(content))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(content))
	default:
		return nil, fmt.Errorf("unsupported image type: %s", mediaType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if uint(img.Bounds().Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: thumbQuality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func objectKeys(owner, deadlineID, submID fmt.Stringer, ext string) (image string, thumb string) {
	prefix := fmt.Sprintf("proofs/%s/%s/%s", owner, deadlineID, submID)
	return prefix + "." + ext, prefix + "_thumb.jpg"
}
