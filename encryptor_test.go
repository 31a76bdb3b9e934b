package pathoram

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

func TestEncryptorsRoundTrip(t *testing.T) {
	aesKey := make([]byte, aesKeySize)
	_, err := rand.Read(aesKey)
	require.NoError(t, err)

	chachaKey := make([]byte, chacha20poly1305.KeySize)
	_, err = rand.Read(chachaKey)
	require.NoError(t, err)

	tests := []struct {
		name string
		enc  Encryptor
	}{
		{name: "aes256gcm", enc: must(NewAESGCMEncryptor(aesKey))},
		{name: "chacha20poly1305", enc: must(NewChaCha20Poly1305Encryptor(chachaKey))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext := []byte("the quick brown fox")

			ciphertext, err := tt.enc.Encrypt(plaintext)
			require.NoError(t, err)
			require.Len(t, ciphertext, len(plaintext)+tt.enc.Overhead())

			got, err := tt.enc.Decrypt(ciphertext)
			require.NoError(t, err)
			require.Equal(t, plaintext, got)
		})
	}
}

func TestEncryptorsProduceFreshNonces(t *testing.T) {
	enc, err := NewAESGCMEncryptor(make([]byte, aesKeySize))
	require.NoError(t, err)

	a, err := enc.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)
	b, err := enc.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)

	require.NotEqual(t, a, b, "two seals of the same plaintext must not be byte-identical")
}

func TestEncryptorsRejectTruncatedCiphertext(t *testing.T) {
	enc, err := NewAESGCMEncryptor(make([]byte, aesKeySize))
	require.NoError(t, err)

	_, err = enc.Decrypt([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrCryptoError)
}

func TestNewEncryptorDispatch(t *testing.T) {
	cfg := Config{Cipher: "chacha20poly1305"}
	enc, err := NewEncryptor(cfg, make([]byte, chacha20poly1305.KeySize))
	require.NoError(t, err)
	require.IsType(t, &ChaCha20Poly1305Encryptor{}, enc)

	cfg = Config{Cipher: "unknown"}
	_, err = NewEncryptor(cfg, make([]byte, 32))
	require.Error(t, err)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
