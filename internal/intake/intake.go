// Package intake accepts the URL typed into the landing form.
package intake

import (
	"errors"
	"strings"
)

// MaxURLLength bounds the accepted input, in bytes.
const MaxURLLength = 2048

var (
	ErrEmptyURL   = errors.New("url is empty")
	ErrURLTooLong = errors.New("url is too long")
)

// Normalize checks raw and returns it unchanged.
// Whitespace is only trimmed to decide emptiness; no scheme or host
// validation is done here.
func Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyURL
	}
	if len(raw) > MaxURLLength {
		return "", ErrURLTooLong
	}
	return raw, nil
}
