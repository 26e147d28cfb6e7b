// Package tokenutil generates opaque, unguessable tokens for
// invitations and kiosk sessions.
package tokenutil

import (
	"crypto/rand"
	"encoding/hex"
)

// NewToken returns a 64-character hex token backed by 32 bytes of
// crypto/rand entropy.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
