package testutil

import (
	"ftl-go/internal/encryption"
	"ftl-go/internal/ftl"
)

// NewTestEncryptor returns an encryptor that frames snapshots without
// encrypting them, so tests need no key files or passphrase.
func NewTestEncryptor() ftl.Encryptor {
	return encryption.PlainEncryptor{}
}
