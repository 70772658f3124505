package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/dkd/limits"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"
)

// Nonce is a 24-byte value used for secretbox encryption.
type Nonce [24]byte

// SymmetricKeySize is the size of a generated password.
const SymmetricKeySize = 32

const contentKeyInfo = "dkd-content-v1"

// GenerateNonce creates a cryptographically secure random nonce.
func GenerateNonce() (Nonce, error) {
	var nonce Nonce
	if _, err := rand.Read(nonce[:]); err != nil {
		return Nonce{}, err
	}
	return nonce, nil
}

// GeneratePassword creates a random symmetric key for one message (or one
// conversation, if the caller reuses it).
func GeneratePassword() ([]byte, error) {
	password := make([]byte, SymmetricKeySize)
	if _, err := rand.Read(password); err != nil {
		return nil, err
	}
	return password, nil
}

// deriveContentKey stretches a password of any length into a cipher key.
func deriveContentKey(password []byte) ([32]byte, error) {
	var key [32]byte
	if err := limits.ValidatePassword(password); err != nil {
		return key, err
	}
	r := hkdf.New(sha256.New, password, nil, []byte(contentKeyInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return [32]byte{}, fmt.Errorf("failed to derive content key: %w", err)
	}
	return key, nil
}

// EncryptContent encrypts plaintext under password with the given cipher.
// The output is nonce || ciphertext || tag.
func EncryptContent(plaintext, password []byte, cipher ContentCipher) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, errors.New("empty message")
	}
	if len(plaintext) > limits.MaxContentSize {
		return nil, errors.New("message too large")
	}

	key, err := deriveContentKey(password)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(key[:])

	if nc, ok := cipher.noiseCipher(); ok {
		var prefix [noiseNonceSize]byte
		if _, err := rand.Read(prefix[:]); err != nil {
			return nil, err
		}
		n := binary.BigEndian.Uint64(prefix[:])
		return nc.Cipher(key).Encrypt(prefix[:], n, nil, plaintext), nil
	}

	if cipher != CipherXSalsa20Poly1305 {
		return nil, fmt.Errorf("unsupported content cipher: %q", cipher)
	}
	nonce, err := GenerateNonce()
	if err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plaintext, (*[24]byte)(&nonce), &key), nil
}

// SealKey encrypts a symmetric key for the holder of recipientPK. The
// sender stays anonymous: only the recipient's private key can open it.
func SealKey(password []byte, recipientPK [32]byte) ([]byte, error) {
	if err := limits.ValidatePassword(password); err != nil {
		return nil, err
	}
	if isZeroKey(recipientPK) {
		return nil, errors.New("invalid recipient key: all zeros")
	}
	return box.SealAnonymous(nil, password, &recipientPK, rand.Reader)
}
