package audio

import (
	"strings"

	"github.com/zaf/g711"
)

// DecodeForPlayback prepares fetched audio bytes for the stage. Telephony
// payloads (µ-law or A-law) are expanded to 16-bit linear PCM; anything
// else is passed through untouched.
func DecodeForPlayback(data []byte, contentType, ref string) []byte {
	switch {
	case isUlaw(contentType, ref):
		return g711.DecodeUlaw(data)
	case isAlaw(contentType, ref):
		return g711.DecodeAlaw(data)
	default:
		return data
	}
}

func isUlaw(contentType, ref string) bool {
	ct := mediaType(contentType)
	return ct == "audio/basic" || ct == "audio/ulaw" || ct == "audio/x-mulaw" ||
		strings.HasSuffix(ref, ".ulaw") || strings.HasSuffix(ref, ".ul")
}

func isAlaw(contentType, ref string) bool {
	ct := mediaType(contentType)
	return ct == "audio/alaw" || ct == "audio/x-alaw" ||
		strings.HasSuffix(ref, ".alaw") || strings.HasSuffix(ref, ".al")
}

func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
