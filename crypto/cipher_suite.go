package crypto

import (
	"fmt"
	"strings"

	"github.com/flynn/noise"
	"golang.org/x/crypto/nacl/secretbox"
)

// ContentCipher names the symmetric AEAD used to encrypt message content.
type ContentCipher string

// Supported content ciphers.
const (
	// CipherXSalsa20Poly1305 is NaCl secretbox with a random 24-byte nonce.
	CipherXSalsa20Poly1305 ContentCipher = "XSalsa20Poly1305"
	// CipherChaChaPoly is ChaCha20-Poly1305 with a random 64-bit nonce.
	CipherChaChaPoly ContentCipher = "ChaChaPoly"
	// CipherAESGCM is AES-256-GCM with a random 64-bit nonce.
	CipherAESGCM ContentCipher = "AESGCM"
)

// DefaultContentCipher is used when no cipher is configured.
const DefaultContentCipher = CipherXSalsa20Poly1305

// SupportedContentCiphers lists all content ciphers in order of preference.
var SupportedContentCiphers = []ContentCipher{
	CipherXSalsa20Poly1305,
	CipherChaChaPoly,
	CipherAESGCM,
}

// noiseNonceSize is the counter prefix written by the noise based ciphers.
const noiseNonceSize = 8

// ParseContentCipher resolves a cipher name, ignoring case.
func ParseContentCipher(name string) (ContentCipher, error) {
	for _, c := range SupportedContentCiphers {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported content cipher: %q", name)
}

// String implements fmt.Stringer.
func (c ContentCipher) String() string {
	return string(c)
}

// NonceSize is the length of the nonce prefix in the ciphertext.
func (c ContentCipher) NonceSize() int {
	if c == CipherXSalsa20Poly1305 {
		return 24
	}
	return noiseNonceSize
}

// Overhead is the number of bytes the cipher adds to a plaintext.
func (c ContentCipher) Overhead() int {
	return c.NonceSize() + secretbox.Overhead
}

// noiseCipher maps the cipher to its flynn/noise implementation.
func (c ContentCipher) noiseCipher() (noise.CipherFunc, bool) {
	switch c {
	case CipherChaChaPoly:
		return noise.CipherChaChaPoly, true
	case CipherAESGCM:
		return noise.CipherAESGCM, true
	default:
		return nil, false
	}
}
