package fieldstore

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ID is the canonical identity of a record: 12 opaque bytes rendered as a
// 24-character lowercase hex string. The hex form is the key used by every
// storage tier.
type ID [12]byte

// NewID generates a fresh identifier from the current unix timestamp and
// eight random bytes, keeping ids roughly sortable by creation time.
func NewID() ID {
	var id ID
	binary.BigEndian.PutUint32(id[:4], uint32(time.Now().Unix()))
	if _, err := rand.Read(id[4:]); err != nil {
		panic(fmt.Sprintf("fieldstore: id entropy unavailable: %v", err))
	}
	return id
}

// ParseID decodes a 24-character hex string into an ID. Uppercase input is
// accepted and normalised.
func ParseID(s string) (ID, error) {
	var id ID
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 24 {
		return id, fmt.Errorf("fieldstore: id must be 24 hex characters, got %d", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("fieldstore: invalid id %q: %w", s, err)
	}
	copy(id[:], raw)
	return id, nil
}

// NormalizeID returns the canonical lowercase hex form of a raw id string,
// or an error if it is not a valid id.
func NormalizeID(s string) (string, error) {
	id, err := ParseID(s)
	if err != nil {
		return "", err
	}
	return id.Hex(), nil
}

// Hex renders the id in its canonical lowercase form.
func (id ID) Hex() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the id is the all-zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}

func (id ID) String() string {
	return id.Hex()
}
