package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keySize = 32

var keyInfo = []byte("workbench credential vault v1")

// ErrEmptyKey is returned when no key material was configured.
var ErrEmptyKey = errors.New("vault: empty key material")

// DeriveKey turns configured key material into a 256-bit AES key. A 64
// character hex string is used verbatim; anything else is stretched with
// HKDF-SHA256 so short passphrases still produce a full-size key.
func DeriveKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptyKey
	}

	if len(secret) == keySize*2 {
		if key, err := hex.DecodeString(secret); err == nil {
			return key, nil
		}
	}

	key := make([]byte, keySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, keyInfo)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
