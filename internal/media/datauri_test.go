// internal/media/datauri_test.go
package media

import (
	"bytes"
	"testing"
)

func TestDataURI_RoundTrip(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}

	uri := EncodeDataURI("image/png", payload)
	mimeType, data, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI() error = %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("mime type = %q, want image/png", mimeType)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("payload = %v, want %v", data, payload)
	}
}

func TestDecodeDataURI_Malformed(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{name: "not a data uri", uri: "https://example.com/a.png"},
		{name: "missing comma", uri: "data:image/png;base64"},
		{name: "not base64 encoded", uri: "data:text/plain,hello"},
		{name: "invalid payload", uri: "data:image/png;base64,!!!"},
		{name: "empty string", uri: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeDataURI(tt.uri); err == nil {
				t.Errorf("DecodeDataURI(%q) error = nil, want failure", tt.uri)
			}
		})
	}
}
