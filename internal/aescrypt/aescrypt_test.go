package aescrypt

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

// decrypt is a minimal AES Crypt v2 reader used to check what Encrypt writes.
func decrypt(t *testing.T, data []byte, passphrase string) []byte {
	t.Helper()

	require.Equal(t, []byte{'A', 'E', 'S', 2, 0}, data[:5])
	data = data[5:]
	for {
		n := int(binary.BigEndian.Uint16(data))
		data = data[2:]
		if n == 0 {
			break
		}
		data = data[n:]
	}

	pass, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(passphrase))
	require.NoError(t, err)

	iv1, wrapped, mac1 := data[:16], data[16:64], data[64:96]
	data = data[96:]
	key := stretch(pass, iv1)

	m := hmac.New(sha256.New, key)
	m.Write(wrapped)
	require.True(t, hmac.Equal(mac1, m.Sum(nil)), "wrapped key hmac")

	outer, err := aes.NewCipher(key)
	require.NoError(t, err)
	plainKey := make([]byte, 48)
	cipher.NewCBCDecrypter(outer, iv1).CryptBlocks(plainKey, wrapped)
	iv2, k2 := plainKey[:16], plainKey[16:]

	require.GreaterOrEqual(t, len(data), 33)
	ct := data[:len(data)-33]
	tail := data[len(data)-33]
	mac2 := data[len(data)-32:]

	m = hmac.New(sha256.New, k2)
	m.Write(ct)
	require.True(t, hmac.Equal(mac2, m.Sum(nil)), "payload hmac")
	require.Zero(t, len(ct)%16)

	inner, err := aes.NewCipher(k2)
	require.NoError(t, err)
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(inner, iv2).CryptBlocks(pt, ct)
	if tail != 0 {
		pt = pt[:len(pt)-(16-int(tail))]
	}
	return pt
}

func payload(n int) []byte {
	r := rand.New(rand.NewPCG(uint64(n), 42))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.Uint32())
	}
	return b
}

func TestEncryptRoundTrip(t *testing.T) {
	const buf = 64
	sizes := []int{0, 1, 15, 16, 17, buf - 1, buf, buf + 1, 3 * buf, 3*buf + 5, 1000}

	e, err := New("correct horse battery staple", buf)
	require.NoError(t, err)

	for _, size := range sizes {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			in := payload(size)
			var out bytes.Buffer
			require.NoError(t, e.Encrypt(context.Background(), &out, bytes.NewReader(in)))
			require.Equal(t, in, append([]byte{}, decrypt(t, out.Bytes(), "correct horse battery staple")...))
		})
	}
}

func TestEncryptNonASCIIPassphrase(t *testing.T) {
	e, err := New("pässwörd-密码", 0)
	require.NoError(t, err)

	in := payload(70000)
	var out bytes.Buffer
	require.NoError(t, e.Encrypt(context.Background(), &out, bytes.NewReader(in)))
	require.Equal(t, in, decrypt(t, out.Bytes(), "pässwörd-密码"))
}

func TestEncryptWritesCreatorExtension(t *testing.T) {
	e, err := New("pw", 0, WithCreator("unit-test"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, e.Encrypt(context.Background(), &out, strings.NewReader("x")))
	require.Contains(t, out.String()[:40], "CREATED_BY\x00unit-test")
}

func TestEncryptIsRandomised(t *testing.T) {
	e, err := New("pw", 0)
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, e.Encrypt(context.Background(), &a, strings.NewReader("same input")))
	require.NoError(t, e.Encrypt(context.Background(), &b, strings.NewReader("same input")))
	require.NotEqual(t, a.Bytes(), b.Bytes())
}

func TestEncryptDeterministicWithFixedRandom(t *testing.T) {
	// iv1, iv2 and k2 consume 64 bytes per stream
	seed := bytes.Repeat([]byte{0x5a}, 64)

	encrypt := func() []byte {
		e, err := New("pw", 0, WithRandom(bytes.NewReader(seed)))
		require.NoError(t, err)
		var out bytes.Buffer
		require.NoError(t, e.Encrypt(context.Background(), &out, strings.NewReader("same input")))
		return out.Bytes()
	}

	a, b := encrypt(), encrypt()
	require.Equal(t, a, b)
	require.Equal(t, []byte("same input"), decrypt(t, a, "pw"))
}

func TestEncryptShortRandomFails(t *testing.T) {
	e, err := New("pw", 0, WithRandom(bytes.NewReader(make([]byte, 20))))
	require.NoError(t, err)

	err = e.Encrypt(context.Background(), &bytes.Buffer{}, strings.NewReader("x"))
	require.ErrorContains(t, err, "generating random bytes")
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("", 0)
	require.ErrorIs(t, err, ErrEmptyPassphrase)

	_, err = New(strings.Repeat("a", MaxPassphraseLen+1), 0)
	require.ErrorIs(t, err, ErrPassphraseTooLong)

	_, err = New("pw", 1000)
	require.ErrorIs(t, err, ErrBufferSize)

	_, err = New(strings.Repeat("a", MaxPassphraseLen), 0)
	require.NoError(t, err)
}

func TestEncryptHonoursCancellation(t *testing.T) {
	e, err := New("pw", 16)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = e.Encrypt(ctx, &bytes.Buffer{}, bytes.NewReader(payload(100)))
	require.ErrorIs(t, err, context.Canceled)
}

func TestEncryptFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.tar")
	dst := filepath.Join(dir, "in.tar.aes")
	in := payload(200000)
	require.NoError(t, os.WriteFile(src, in, 0o644))

	e, err := New("pw", DefaultBufferSize)
	require.NoError(t, err)
	require.NoError(t, e.EncryptFile(context.Background(), src, dst))

	out, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, in, decrypt(t, out, "pw"))
}

func TestEncryptFileMissingInputLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.aes")

	e, err := New("pw", 0)
	require.NoError(t, err)
	require.Error(t, e.EncryptFile(context.Background(), filepath.Join(dir, "missing"), dst))

	_, err = os.Stat(dst)
	require.True(t, os.IsNotExist(err))
}
