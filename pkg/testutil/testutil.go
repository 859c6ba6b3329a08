// Package testutil provides deterministic fixtures shared across test
// packages.
package testutil

import (
	"context"

	"golang.org/x/crypto/sha3"

	"dropforge/pkg/domain"
	"dropforge/pkg/requestcontext"
)

// Account builds a deterministic non-zero account from a single byte tag.
func Account(tag byte) domain.Account {
	var a domain.Account
	for i := range a {
		a[i] = tag
	}
	return a
}

// HashOf fingerprints a string, giving tests readable non-zero hashes.
func HashOf(s string) domain.Hash {
	sum := sha3.Sum256([]byte(s))
	return domain.Hash(sum)
}

// CtxAt returns a context pinned to a fixed height so admissibility checks
// are deterministic.
func CtxAt(height uint64) context.Context {
	return requestcontext.WithHeight(context.Background(), height)
}

// CtxAtAs pins both height and actor.
func CtxAtAs(height uint64, actor domain.Account) context.Context {
	return requestcontext.WithActor(CtxAt(height), actor)
}
