// internal/media/datauri.go
package media

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeDataURI wraps raw bytes as a base64 data URI.
func EncodeDataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI splits a base64 data URI into its MIME type and raw bytes.
func DecodeDataURI(uri string) (mimeType string, data []byte, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, fmt.Errorf("not a data URI")
	}

	rest := strings.TrimPrefix(uri, "data:")
	sep := strings.Index(rest, ",")
	if sep < 0 {
		return "", nil, fmt.Errorf("malformed data URI")
	}

	header := rest[:sep]
	payload := rest[sep+1:]

	if !strings.HasSuffix(header, ";base64") {
		return "", nil, fmt.Errorf("data URI is not base64 encoded")
	}
	mimeType = strings.TrimSuffix(header, ";base64")

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding data URI payload: %w", err)
	}

	return mimeType, data, nil
}
