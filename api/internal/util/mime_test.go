package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffMimeHTTP(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}
	webp := []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")

	assert.Equal(t, "image/jpeg", SniffMimeHTTP(jpeg))
	assert.Equal(t, "image/png", SniffMimeHTTP(png))
	assert.Equal(t, "image/webp", SniffMimeHTTP(webp))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP([]byte("%PDF-1.4")))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP(nil))
}

// Всё, что умеет сниффер по картинкам, должна принимать и vision-модель.
func TestSniffedImagesAreAccepted(t *testing.T) {
	for _, mime := range []string{"image/jpeg", "image/png", "image/webp"} {
		assert.True(t, IsAcceptedImageMIME(mime), mime)
	}
	assert.False(t, IsAcceptedImageMIME("application/octet-stream"))
	assert.False(t, IsAcceptedImageMIME("application/pdf"))
}
