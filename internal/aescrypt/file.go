package aescrypt

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// EncryptFile encrypts srcPath into dstPath. A partially written dstPath is
// removed on failure.
func (e *Encryptor) EncryptFile(ctx context.Context, srcPath, dstPath string) (err error) {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("aescrypt: opening input: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dstPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("aescrypt: creating output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("aescrypt: closing output: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(dstPath)
		}
	}()

	w := bufio.NewWriterSize(out, e.bufferSize)
	if err := e.Encrypt(ctx, w, bufio.NewReaderSize(in, e.bufferSize)); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("aescrypt: writing output: %w", err)
	}
	return out.Sync()
}
