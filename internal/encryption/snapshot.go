package encryption

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"ftl-go/internal/ftl"
)

// Seal compresses a database snapshot and encrypts the result.
func Seal(enc ftl.Encryptor, r io.Reader, w io.Writer) error {
	pr, pw := io.Pipe()
	go func() {
		zw, err := zstd.NewWriter(pw)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(zw, r); err != nil {
			zw.Close()
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(zw.Close())
	}()

	if err := enc.Encrypt(pr, w); err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("sealing snapshot: %w", err)
	}
	return nil
}

// Open reverses Seal.
func Open(dc ftl.DecryptionContext, r io.Reader, w io.Writer) error {
	pr, pw := io.Pipe()
	defer pr.Close()
	go func() {
		pw.CloseWithError(dc.Decrypt(r, pw))
	}()

	zr, err := zstd.NewReader(pr)
	if err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer zr.Close()

	if _, err := io.Copy(w, zr); err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("opening snapshot: %w", err)
	}
	return nil
}
