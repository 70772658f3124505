// Package limits provides centralized size constants and validation functions
// for message transformation, so that the transform engine and the crypto
// suite reject oversized or empty input the same way.
//
// # Size Hierarchy
//
//   - MaxContentSize (64KB): the largest serialized Content accepted for
//     encryption. Large payloads (files, media) are expected to travel by
//     reference, not inline.
//
//   - MaxCiphertextSize: MaxContentSize plus the largest content cipher
//     overhead (nonce prefix and authentication tag).
//
//   - MaxPasswordSize (1KB): the largest symmetric key accepted.
//
//   - MaxProcessingBuffer (1MB): the absolute maximum for any decoded field.
//     This prevents memory exhaustion from hostile input.
//
// # Validation Functions
//
// Each validation function checks for empty input and size limit violations:
//
//	if err := limits.ValidateContent(plaintext); err != nil {
//	    // ErrMessageEmpty or ErrMessageTooLarge
//	}
//
// Base64 fields can be checked before they are decoded:
//
//	err := limits.ValidateEncodedField(sMsg.Data, limits.MaxProcessingBuffer)
package limits
