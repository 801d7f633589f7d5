package id

import "github.com/google/uuid"

// New returns a fresh opaque identifier.
func New() string { return uuid.NewString() }

// NewWithPrefix derives a readable identifier family, e.g. screenshot ids
// that distinguish with/without-background captures.
func NewWithPrefix(prefix string) string { return prefix + "-" + uuid.NewString() }
