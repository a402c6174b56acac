package util

import (
	"encoding/base64"
	"encoding/json"
)

// Base64JSON marshals v and returns the base64 encoding of the JSON bytes.
// Used for attachment bodies, which the CRM expects base64 encoded.
func Base64JSON(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
