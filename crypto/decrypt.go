package crypto

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"
)

// ErrDecryptionFailed is returned when a ciphertext does not authenticate
// under the given key.
var ErrDecryptionFailed = errors.New("decryption failed: message authentication failed")

// DecryptContent reverses EncryptContent.
func DecryptContent(ciphertext, password []byte, cipher ContentCipher) ([]byte, error) {
	if len(ciphertext) < cipher.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	key, err := deriveContentKey(password)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(key[:])

	if nc, ok := cipher.noiseCipher(); ok {
		n := binary.BigEndian.Uint64(ciphertext[:noiseNonceSize])
		plaintext, err := nc.Cipher(key).Decrypt(nil, n, nil, ciphertext[noiseNonceSize:])
		if err != nil {
			return nil, ErrDecryptionFailed
		}
		return plaintext, nil
	}

	if cipher != CipherXSalsa20Poly1305 {
		return nil, fmt.Errorf("unsupported content cipher: %q", cipher)
	}
	var nonce [24]byte
	copy(nonce[:], ciphertext[:24])
	plaintext, ok := secretbox.Open(nil, ciphertext[24:], &nonce, &key)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// OpenKey reverses SealKey using the recipient's key pair.
func OpenKey(sealed []byte, kp *KeyPair) ([]byte, error) {
	if kp == nil {
		return nil, errors.New("nil key pair")
	}
	if len(sealed) <= box.AnonymousOverhead {
		return nil, fmt.Errorf("%w: sealed key too short", ErrDecryptionFailed)
	}

	password, ok := box.OpenAnonymous(nil, sealed, &kp.Public, &kp.Private)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return password, nil
}
