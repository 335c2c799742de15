package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Address is the content address of an entry: the lowercase hex form of
// the SHA-256 digest of its bytes. The same content always yields the same
// address, no matter which agent committed it.
type Address string

// NewAddress hashes content into its address.
func NewAddress(content []byte) Address {
	sum := sha256.Sum256(content)
	return Address(hex.EncodeToString(sum[:]))
}

// Validate checks that the address is a well-formed SHA-256 hex string.
func (a Address) Validate() error {
	if len(a) != 64 {
		return fmt.Errorf("address must be 64 hex characters, got %d", len(a))
	}
	if _, err := hex.DecodeString(string(a)); err != nil {
		return fmt.Errorf("address is not valid hex: %w", err)
	}
	return nil
}

// IsEmpty reports whether the address is unset.
func (a Address) IsEmpty() bool {
	return a == ""
}

func (a Address) String() string {
	return string(a)
}
