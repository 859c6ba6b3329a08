package domain

import (
	"encoding/hex"
	"strings"

	dErrors "dropforge/pkg/domain-errors"
)

// HashLength is the byte length of a content fingerprint / accumulator node.
const HashLength = 32

// Hash is a 32-byte fingerprint: content and label fingerprints, handle
// fingerprints, allowlist commitment roots, and proof nodes. The system never
// stores artwork content, only these fingerprints.
type Hash [HashLength]byte

// ZeroHash is the absent fingerprint. An allowlist root equal to ZeroHash
// verifies nothing.
var ZeroHash Hash

func (h Hash) IsZero() bool { return h == ZeroHash }

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Bytes returns a copy of the raw hash bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, HashLength)
	copy(out, h[:])
	return out
}

// ParseHash validates a fingerprint string at trust boundaries. Unlike
// accounts, the zero hash is accepted: it is the documented "no label / no
// root" value.
func ParseHash(s string) (Hash, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if len(raw) != HashLength*2 {
		return Hash{}, dErrors.New(dErrors.CodeInvalidInput, "fingerprint must be 32 bytes of hex")
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return Hash{}, dErrors.New(dErrors.CodeInvalidInput, "fingerprint is not valid hex")
	}
	var h Hash
	copy(h[:], decoded)
	return h, nil
}

// HashFromBytes copies b into a Hash. Inputs that are not exactly 32 bytes
// are a programming error upstream and yield the zero hash.
func HashFromBytes(b []byte) Hash {
	var h Hash
	if len(b) == HashLength {
		copy(h[:], b)
	}
	return h
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
