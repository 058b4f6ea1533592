package detector

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// fingerprintSize is the edge of the canvas images are scaled to before
// hashing. Small enough that encoder noise mostly disappears.
const fingerprintSize = 16

// Fingerprint returns a content hash of img that is equal for images that
// look the same at 16×16, whatever their source encoding. If the image
// cannot be fingerprinted a unique value is returned so that it is treated
// as new rather than dropped.
func Fingerprint(img image.Image) (fp string) {
	defer func() {
		if r := recover(); r != nil {
			fp = uniqueFingerprint()
		}
	}()
	if img == nil || img.Bounds().Empty() {
		return uniqueFingerprint()
	}

	small := image.NewNRGBA(image.Rect(0, 0, fingerprintSize, fingerprintSize))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, small); err != nil {
		return uniqueFingerprint()
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(buf.Bytes()))
}

func uniqueFingerprint() string { return "unique:" + uuid.NewString() }

// payloadKey identifies raw clipboard bytes that could not be decoded.
func payloadKey(data []byte) string {
	return fmt.Sprintf("raw:%016x", xxhash.Sum64(data))
}
