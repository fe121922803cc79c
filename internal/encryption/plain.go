package encryption

import (
	"bytes"
	"fmt"
	"io"

	"ftl-go/internal/ftl"
)

// plainHeader marks snapshots written by PlainEncryptor.
var plainHeader = []byte("FTLSNAP\x00")

// PlainEncryptor frames snapshots without encrypting them. It is selected
// with encryption type "none" for local sites and in tests, and keeps
// restores honest by rejecting data it did not write.
type PlainEncryptor struct{}

var _ ftl.Encryptor = PlainEncryptor{}

func (PlainEncryptor) Setup(string) error { return nil }

func (PlainEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(plainHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying snapshot: %w", err)
	}
	return nil
}

func (PlainEncryptor) Unlock(string) (ftl.DecryptionContext, error) {
	return plainContext{}, nil
}

func (PlainEncryptor) IsConfigured() bool { return true }

type plainContext struct{}

func (plainContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(plainHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header, plainHeader) {
		return fmt.Errorf("not an unencrypted snapshot")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying snapshot: %w", err)
	}
	return nil
}
