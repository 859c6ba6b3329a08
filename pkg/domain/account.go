package domain

import (
	"bytes"
	"encoding/hex"
	"strings"

	dErrors "dropforge/pkg/domain-errors"
)

// AccountLength is the byte length of an account identity.
const AccountLength = 20

// Account is a 20-byte account identity, rendered as 0x-prefixed lowercase
// hex. It is a value type so it can key maps directly.
type Account [AccountLength]byte

// ZeroAccount is the reserved all-zeroes account; it is never a valid actor.
var ZeroAccount Account

func (a Account) IsZero() bool { return a == ZeroAccount }

func (a Account) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Bytes returns a copy of the raw account bytes.
func (a Account) Bytes() []byte {
	out := make([]byte, AccountLength)
	copy(out, a[:])
	return out
}

// ParseAccount validates an account string at trust boundaries. The zero
// account is rejected; stores and services can therefore treat the zero value
// as "absent".
func ParseAccount(s string) (Account, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if len(raw) != AccountLength*2 {
		return Account{}, dErrors.New(dErrors.CodeInvalidInput, "account must be 20 bytes of hex")
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return Account{}, dErrors.New(dErrors.CodeInvalidInput, "account is not valid hex")
	}
	var a Account
	copy(a[:], decoded)
	if a.IsZero() {
		return Account{}, dErrors.NewKind(dErrors.CodeInvalidInput, dErrors.KindZeroAddress, "zero account is reserved")
	}
	return a, nil
}

func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Account) UnmarshalText(text []byte) error {
	parsed, err := ParseAccount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Compare orders two accounts bytewise. Used by the allowlist verifier's
// sorted-pair hashing rule.
func (a Account) Compare(other Account) int {
	return bytes.Compare(a[:], other[:])
}
