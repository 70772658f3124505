package crypto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opd-ai/dkd/limits"
	"github.com/opd-ai/dkd/message"
	"github.com/opd-ai/dkd/transform"
	"github.com/sirupsen/logrus"
)

// ErrNotSelf indicates an operation needs the private key of an identity
// other than the suite's own.
var ErrNotSelf = errors.New("private key not held for identity")

// SuiteOptions configures a Suite.
type SuiteOptions struct {
	// Cipher encrypts message content. Both ends must agree on it.
	Cipher ContentCipher

	// MaxContentSize bounds the serialized content accepted for encryption.
	MaxContentSize int

	// Logger receives debug traces and warnings. Nil means the logrus
	// standard logger.
	Logger *logrus.Logger
}

// NewSuiteOptions returns the default options.
func NewSuiteOptions() *SuiteOptions {
	return &SuiteOptions{
		Cipher:         DefaultContentCipher,
		MaxContentSize: limits.MaxContentSize,
		Logger:         logrus.StandardLogger(),
	}
}

// Suite implements transform.Crypto for one local identity:
//
//   - content is serialized as JSON and encrypted with a ContentCipher under
//     a key derived from the password,
//   - the password is sealed anonymously to the receiver's Curve25519 key,
//   - the data is signed with the sender's Ed25519 key.
//
// Public keys of peers come from a Directory. A Suite holds no mutable state
// and is safe for concurrent use if its Directory is.
type Suite struct {
	self           *Identity
	directory      Directory
	cipher         ContentCipher
	maxContentSize int
	log            *logrus.Logger
}

var _ transform.Crypto = (*Suite)(nil)

// NewSuite creates a Suite acting as self. A nil opts uses NewSuiteOptions().
func NewSuite(self *Identity, directory Directory, opts *SuiteOptions) (*Suite, error) {
	if self == nil || self.Encryption == nil {
		return nil, errors.New("suite requires an identity with encryption keys")
	}
	if directory == nil {
		return nil, errors.New("suite requires a directory")
	}
	if opts == nil {
		opts = NewSuiteOptions()
	}

	cipher := opts.Cipher
	if cipher == "" {
		cipher = DefaultContentCipher
	}
	if _, err := ParseContentCipher(string(cipher)); err != nil {
		return nil, err
	}

	maxContentSize := opts.MaxContentSize
	if maxContentSize <= 0 || maxContentSize > limits.MaxContentSize {
		maxContentSize = limits.MaxContentSize
	}

	return &Suite{
		self:           self,
		directory:      directory,
		cipher:         cipher,
		maxContentSize: maxContentSize,
		log:            opts.Logger,
	}, nil
}

func (s *Suite) logger(function string) *LoggerHelper {
	return newLoggerFor(s.log, function)
}

// Self returns the ID of the local identity.
func (s *Suite) Self() message.ID {
	return s.self.ID
}

// Cipher returns the content cipher in use.
func (s *Suite) Cipher() ContentCipher {
	return s.cipher
}

// EncryptContent implements transform.Encryptor.
func (s *Suite) EncryptContent(iMsg *message.InstantMessage, content *message.Content, password []byte) ([]byte, error) {
	if content == nil {
		return nil, errors.New("nil content")
	}

	plaintext, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize content: %w", err)
	}
	defer ZeroBytes(plaintext)

	if err := limits.ValidateMessageSize(plaintext, s.maxContentSize); err != nil {
		return nil, err
	}

	data, err := EncryptContent(plaintext, password, s.cipher)
	if err != nil {
		s.logger("EncryptContent").
			WithField("cipher", s.cipher).
			WithError(err, "encrypt").
			Warn("Content encryption failed")
		return nil, err
	}

	s.logger("EncryptContent").
		WithField("cipher", s.cipher).
		WithFields(SecureFieldHash(data, "data")).
		Debug("Content encrypted")
	return data, nil
}

// EncryptKey implements transform.Encryptor.
func (s *Suite) EncryptKey(iMsg *message.InstantMessage, password []byte, receiver message.ID) ([]byte, error) {
	profile, err := s.directory.Lookup(receiver)
	if err != nil {
		return nil, err
	}

	key, err := SealKey(password, profile.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to seal key for %s: %w", receiver, err)
	}
	return key, nil
}

// DecryptKey implements transform.Decryptor. For a single-recipient
// message the receiver must be the local identity; for a group message the
// key is assumed to have been sealed for the local identity as a member.
func (s *Suite) DecryptKey(sMsg *message.SecureMessage, key []byte, sender, receiver, group message.ID) ([]byte, error) {
	if group.IsEmpty() && receiver != s.self.ID {
		return nil, fmt.Errorf("%w: message for %s, local identity is %s",
			transform.ErrKeyDecryption, receiver, s.self.ID)
	}

	password, err := OpenKey(key, s.self.Encryption)
	if err != nil {
		s.logger("DecryptKey").
			WithField("sender", sender).
			WithField("group", group).
			WithError(err, "open_key").
			Debug("Key did not open with local private key")
		return nil, fmt.Errorf("%w: %w", transform.ErrKeyDecryption, err)
	}
	return password, nil
}

// DecryptContent implements transform.Decryptor.
func (s *Suite) DecryptContent(sMsg *message.SecureMessage, data []byte, password []byte) (*message.Content, error) {
	plaintext, err := DecryptContent(data, password, s.cipher)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", transform.ErrContentDecryption, err)
	}
	defer ZeroBytes(plaintext)

	var content message.Content
	if err := json.Unmarshal(plaintext, &content); err != nil {
		return nil, fmt.Errorf("%w: %w", transform.ErrContentDecryption, err)
	}
	return &content, nil
}

// Sign implements transform.Signer. Only the local identity can sign.
func (s *Suite) Sign(sMsg *message.SecureMessage, data []byte, sender message.ID) ([]byte, error) {
	if sender != s.self.ID {
		return nil, fmt.Errorf("%w: %s", ErrNotSelf, sender)
	}

	signature, err := Sign(data, s.self.SigningSeed)
	if err != nil {
		return nil, err
	}
	return signature[:], nil
}

// Verify implements transform.Signer.
func (s *Suite) Verify(rMsg *message.ReliableMessage, data, signature []byte, sender message.ID) (bool, error) {
	profile, err := s.directory.Lookup(sender)
	if err != nil {
		return false, err
	}
	if len(signature) != SignatureSize {
		return false, nil
	}

	var sig Signature
	copy(sig[:], signature)
	return Verify(data, sig, profile.VerifyKey)
}
