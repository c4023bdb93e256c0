package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex returns n random bytes encoded as hexadecimal, suitable for
// per-color secret keys.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
