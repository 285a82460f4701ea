// Package aescrypt writes the AES Crypt stream format, version 2.
//
// Layout of an encrypted stream:
//
//	"AES" 0x02 0x00
//	extensions: repeated [uint16 length][data], terminated by a zero length
//	IV1 (16 bytes)
//	AES-256-CBC(key, IV1, IV2 || K2) (48 bytes)
//	HMAC-SHA256(key, previous 48 bytes)
//	AES-256-CBC(K2, IV2, plaintext padded to the block size)
//	plaintext length mod 16 (1 byte)
//	HMAC-SHA256(K2, ciphertext)
//
// key is SHA-256 iterated 8192 times over (digest || UTF-16LE passphrase),
// starting from IV1 padded to 32 bytes. IV2 and K2 are random per stream.
// Files written here can be opened by any AES Crypt v2 reader (aescrypt,
// pyAesCrypt).
package aescrypt

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

const (
	// DefaultBufferSize is the I/O chunk used when none is given.
	DefaultBufferSize = 64 * 1024
	// MaxPassphraseLen is the longest accepted passphrase, in characters.
	MaxPassphraseLen = 1024

	version       = 2
	blockSize     = aes.BlockSize
	keySize       = 32
	stretchRounds = 8192
	containerSize = 128
	createdByTag  = "CREATED_BY"
)

var (
	ErrEmptyPassphrase   = errors.New("aescrypt: passphrase is empty")
	ErrPassphraseTooLong = fmt.Errorf("aescrypt: passphrase longer than %d characters", MaxPassphraseLen)
	ErrBufferSize        = fmt.Errorf("aescrypt: buffer size must be a positive multiple of %d", blockSize)
)

// Encryptor encrypts streams under one passphrase.
type Encryptor struct {
	passphrase []byte // UTF-16LE
	bufferSize int
	creator    string
	rand       io.Reader
}

// Option customises an Encryptor.
type Option func(*Encryptor)

// WithCreator sets the CREATED_BY extension value.
func WithCreator(name string) Option {
	return func(e *Encryptor) { e.creator = name }
}

// WithRandom replaces crypto/rand as the source of IVs and keys.
func WithRandom(r io.Reader) Option {
	return func(e *Encryptor) { e.rand = r }
}

// New validates the passphrase and buffer size. bufferSize 0 selects
// DefaultBufferSize.
func New(passphrase string, bufferSize int, opts ...Option) (*Encryptor, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if utf8.RuneCountInString(passphrase) > MaxPassphraseLen {
		return nil, ErrPassphraseTooLong
	}
	if bufferSize == 0 {
		bufferSize = DefaultBufferSize
	}
	if bufferSize < 0 || bufferSize%blockSize != 0 {
		return nil, ErrBufferSize
	}

	pass, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("aescrypt: encoding passphrase: %w", err)
	}

	e := &Encryptor{
		passphrase: pass,
		bufferSize: bufferSize,
		creator:    "sql-archiver",
		rand:       rand.Reader,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Encrypt reads src to EOF and writes the encrypted stream to dst.
// ctx is checked between buffers.
func (e *Encryptor) Encrypt(ctx context.Context, dst io.Writer, src io.Reader) error {
	if err := e.writeHeader(dst); err != nil {
		return err
	}

	iv1, err := e.random(blockSize)
	if err != nil {
		return err
	}
	key := stretch(e.passphrase, iv1)

	iv2, err := e.random(blockSize)
	if err != nil {
		return err
	}
	k2, err := e.random(keySize)
	if err != nil {
		return err
	}

	outer, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("aescrypt: %w", err)
	}
	wrapped := make([]byte, blockSize+keySize)
	cipher.NewCBCEncrypter(outer, iv1).CryptBlocks(wrapped, append(append([]byte{}, iv2...), k2...))

	mac1 := hmac.New(sha256.New, key)
	mac1.Write(wrapped)

	if err := writeAll(dst, iv1, wrapped, mac1.Sum(nil)); err != nil {
		return err
	}

	inner, err := aes.NewCipher(k2)
	if err != nil {
		return fmt.Errorf("aescrypt: %w", err)
	}
	cbc := cipher.NewCBCEncrypter(inner, iv2)
	mac2 := hmac.New(sha256.New, k2)

	buf := make([]byte, e.bufferSize+blockSize)
	var tail byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := io.ReadFull(src, buf[:e.bufferSize])
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("aescrypt: reading input: %w", err)
		}

		if n == e.bufferSize {
			cbc.CryptBlocks(buf[:n], buf[:n])
			mac2.Write(buf[:n])
			if _, err := dst.Write(buf[:n]); err != nil {
				return fmt.Errorf("aescrypt: writing output: %w", err)
			}
			continue
		}

		// last, short chunk: pad with padLen bytes of value padLen
		tail = byte(n % blockSize)
		chunk := buf[:n]
		if tail != 0 {
			padLen := blockSize - int(tail)
			for i := 0; i < padLen; i++ {
				chunk = append(chunk, byte(padLen))
			}
		}
		cbc.CryptBlocks(chunk, chunk)
		mac2.Write(chunk)
		if err := writeAll(dst, chunk, []byte{tail}, mac2.Sum(nil)); err != nil {
			return err
		}
		return nil
	}
}

func (e *Encryptor) writeHeader(w io.Writer) error {
	ext := make([]byte, 0, len(createdByTag)+1+len(e.creator))
	ext = append(ext, createdByTag...)
	ext = append(ext, 0)
	ext = append(ext, e.creator...)

	hdr := []byte{'A', 'E', 'S', version, 0}
	hdr = binary.BigEndian.AppendUint16(hdr, uint16(len(ext)))
	hdr = append(hdr, ext...)
	// empty container extension that readers may fill in place
	hdr = binary.BigEndian.AppendUint16(hdr, containerSize)
	hdr = append(hdr, make([]byte, containerSize)...)
	hdr = binary.BigEndian.AppendUint16(hdr, 0)

	return writeAll(w, hdr)
}

func (e *Encryptor) random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(e.rand, b); err != nil {
		return nil, fmt.Errorf("aescrypt: generating random bytes: %w", err)
	}
	return b, nil
}

func stretch(passphrase, iv []byte) []byte {
	digest := make([]byte, keySize)
	copy(digest, iv)
	h := sha256.New()
	for i := 0; i < stretchRounds; i++ {
		h.Reset()
		h.Write(digest)
		h.Write(passphrase)
		digest = h.Sum(digest[:0])
	}
	return digest
}

func writeAll(w io.Writer, parts ...[]byte) error {
	for _, p := range parts {
		if _, err := w.Write(p); err != nil {
			return fmt.Errorf("aescrypt: writing output: %w", err)
		}
	}
	return nil
}
