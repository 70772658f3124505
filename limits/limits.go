package limits

import (
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// MaxContentSize is the largest serialized content accepted for encryption.
	MaxContentSize = 64 * 1024

	// EncryptionOverhead is the authentication tag added by every supported
	// content cipher (Poly1305 and GCM both use 16 bytes).
	EncryptionOverhead = 16

	// MaxNonceSize is the largest nonce prefix a content cipher writes
	// (XSalsa20 uses 24 bytes).
	MaxNonceSize = 24

	// MaxCiphertextSize is the largest content ciphertext a suite produces.
	MaxCiphertextSize = MaxContentSize + MaxNonceSize + EncryptionOverhead

	// MaxPasswordSize is the largest symmetric key accepted.
	MaxPasswordSize = 1024

	// MaxProcessingBuffer is the absolute maximum for any operation.
	// This prevents memory exhaustion attacks (1MB limit)
	MaxProcessingBuffer = 1024 * 1024
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")
)

// ValidateMessageSize validates a message against the specified maximum size.
// Returns an error with context including the actual and maximum sizes.
func ValidateMessageSize(message []byte, maxSize int) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	if len(message) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(message), maxSize)
	}
	return nil
}

// ValidateContent validates serialized content against MaxContentSize.
func ValidateContent(content []byte) error {
	if len(content) == 0 {
		return ErrMessageEmpty
	}
	if len(content) > MaxContentSize {
		return fmt.Errorf("%w: content size %d exceeds limit %d", ErrMessageTooLarge, len(content), MaxContentSize)
	}
	return nil
}

// ValidatePassword validates a symmetric key against MaxPasswordSize.
func ValidatePassword(password []byte) error {
	if len(password) == 0 {
		return fmt.Errorf("%w: password", ErrMessageEmpty)
	}
	if len(password) > MaxPasswordSize {
		return fmt.Errorf("%w: password size %d exceeds limit %d", ErrMessageTooLarge, len(password), MaxPasswordSize)
	}
	return nil
}

// ValidateProcessingBuffer validates data against the absolute maximum (MaxProcessingBuffer).
// This limit prevents memory exhaustion attacks and should be used for all untrusted input.
func ValidateProcessingBuffer(data []byte) error {
	return ValidateMessageSize(data, MaxProcessingBuffer)
}

// ValidateEncodedField checks that a standard base64 field is non-empty and
// would decode to at most maxDecoded bytes, without decoding it.
func ValidateEncodedField(field string, maxDecoded int) error {
	if len(field) == 0 {
		return ErrMessageEmpty
	}
	if maxDecoded > MaxProcessingBuffer || maxDecoded <= 0 {
		maxDecoded = MaxProcessingBuffer
	}
	if len(field) > base64.StdEncoding.EncodedLen(maxDecoded) {
		return fmt.Errorf("%w: encoded size %d exceeds limit %d", ErrMessageTooLarge,
			len(field), base64.StdEncoding.EncodedLen(maxDecoded))
	}
	return nil
}
