package subm

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/deadlinr/backend/srvcerror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestCheckImage(t *testing.T) {
	mType, ext, err := checkImage(encodePNG(t, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mType)
	assert.Equal(t, "png", ext)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)), nil))
	mType, ext, err = checkImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mType)
	assert.Equal(t, "jpg", ext)

	_, _, err = checkImage([]byte("GIF89a......"))
	assert.Error(t, err)
}

// pngDeclaring returns a tiny 1x1 PNG whose header claims w x h pixels.
func pngDeclaring(t *testing.T, w, h uint32) []byte {
	t.Helper()
	b := encodePNG(t, 1, 1)
	// 8 byte signature, 4 byte length, "IHDR", then width and height
	require.Equal(t, "IHDR", string(b[12:16]))
	binary.BigEndian.PutUint32(b[16:20], w)
	binary.BigEndian.PutUint32(b[20:24], h)
	binary.BigEndian.PutUint32(b[29:33], crc32.ChecksumIEEE(b[12:29]))
	return b
}

func TestCheckImageRejectsHugeDimensions(t *testing.T) {
	content := pngDeclaring(t, 16000, 16000)
	require.Less(t, len(content), 1024)

	_, _, err := checkImage(content)
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, ErrCodeImageDimensionsTooLarge))

	_, err = makeThumbnail(content, "image/png", ThumbWidth)
	assert.True(t, srvcerror.HasCode(err, ErrCodeImageDimensionsTooLarge))
}

func TestCheckImageAcceptsPixelCap(t *testing.T) {
	_, _, err := checkImage(pngDeclaring(t, 8000, 5000))
	assert.NoError(t, err)

	_, _, err = checkImage(pngDeclaring(t, 8000, 5001))
	assert.True(t, srvcerror.HasCode(err, ErrCodeImageDimensionsTooLarge))
}

func TestThumbnailIsDownscaled(t *testing.T) {
	thumb, err := makeThumbnail(encodePNG(t, 1200, 600), "image/png", ThumbWidth)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, ThumbWidth, img.Bounds().Dx())
	assert.Equal(t, ThumbWidth/2, img.Bounds().Dy())
}

func TestSmallThumbnailKeepsSize(t *testing.T) {
	thumb, err := makeThumbnail(encodePNG(t, 100, 40), "image/png", ThumbWidth)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestObjectKeys(t *testing.T) {
	owner, d, s := uuid.New(), uuid.New(), uuid.New()
	img, thumb := objectKeys(owner, d, s, "jpg")
	prefix := "proofs/" + owner.String() + "/" + d.String() + "/" + s.String()
	assert.Equal(t, prefix+".jpg", img)
	assert.Equal(t, prefix+"_thumb.jpg", thumb)
}
