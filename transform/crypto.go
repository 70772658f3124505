package transform

import "github.com/opd-ai/dkd/message"

// Encryptor encrypts message content and the symmetric key protecting it.
type Encryptor interface {
	// EncryptContent encrypts content with the symmetric key password.
	EncryptContent(iMsg *message.InstantMessage, content *message.Content, password []byte) ([]byte, error)

	// EncryptKey encrypts password with the public key of receiver. It may
	// return an empty result when the receiver already holds the key, in
	// which case no key is attached for that receiver.
	EncryptKey(iMsg *message.InstantMessage, password []byte, receiver message.ID) ([]byte, error)
}

// Decryptor reverses an Encryptor.
type Decryptor interface {
	// DecryptKey recovers the symmetric key. group is empty for a
	// single-recipient message. Failures should match ErrKeyDecryption.
	DecryptKey(sMsg *message.SecureMessage, key []byte, sender, receiver, group message.ID) ([]byte, error)

	// DecryptContent decrypts and authenticates data with the symmetric key.
	// Failures should match ErrContentDecryption.
	DecryptContent(sMsg *message.SecureMessage, data []byte, password []byte) (*message.Content, error)
}

// Signer signs and verifies the encrypted data of a message.
type Signer interface {
	// Sign signs data with the private key of sender.
	Sign(sMsg *message.SecureMessage, data []byte, sender message.ID) ([]byte, error)

	// Verify checks signature over data against the public key of sender.
	Verify(rMsg *message.ReliableMessage, data, signature []byte, sender message.ID) (bool, error)
}

// Crypto is the capability a Transformer needs. Implementations must be
// pure functions of their arguments and must not retain the slices they are
// given.
type Crypto interface {
	Encryptor
	Decryptor
	Signer
}
