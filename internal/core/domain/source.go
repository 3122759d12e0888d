package domain

import "encoding/base64"

// EncodeSource turns a display filename into the opaque form stored as
// vector record metadata. The encoding is reversible so results can be
// traced back to the uploaded file.
func EncodeSource(filename string) string {
	return base64.StdEncoding.EncodeToString([]byte(filename))
}

// DecodeSource reverses EncodeSource.
func DecodeSource(source string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(source)
	if err != nil {
		return "", WrapError(ErrInvalidInput, "decode source metadata", err)
	}
	return string(raw), nil
}
