package transform

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/opd-ai/dkd/limits"
	"github.com/opd-ai/dkd/message"
	"github.com/sirupsen/logrus"
)

var (
	errEmptyCiphertext = errors.New("crypto returned empty ciphertext")
	errEmptySignature  = errors.New("crypto returned empty signature")
)

// Transformer converts messages between the Instant, Secure and Reliable
// states using a caller-supplied Crypto capability.
type Transformer struct {
	crypto      Crypto
	maxDataSize int
	log         *logrus.Entry
}

// NewTransformer creates a Transformer backed by c. A nil opts uses
// NewOptions().
func NewTransformer(c Crypto, opts *Options) (*Transformer, error) {
	if c == nil {
		return nil, ErrNilCrypto
	}
	if opts == nil {
		opts = NewOptions()
	}

	maxDataSize := opts.MaxDataSize
	if maxDataSize <= 0 || maxDataSize > limits.MaxProcessingBuffer {
		maxDataSize = limits.MaxProcessingBuffer
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Transformer{
		crypto:      c,
		maxDataSize: maxDataSize,
		log:         logger.WithField("package", "transform"),
	}, nil
}

// Encrypt encrypts the content of iMsg with password.
//
// Without members the symmetric key is encrypted for iMsg.Receiver and
// stored in Key. With members it is encrypted once per member, for that
// member, and stored in Keys. iMsg and password are not modified or
// retained.
func (t *Transformer) Encrypt(iMsg *message.InstantMessage, password []byte, members []message.ID) (*message.SecureMessage, error) {
	if iMsg == nil {
		return nil, &TransformError{Op: OpEncrypt, Err: malformed("nil instant message")}
	}
	fail := func(err error) (*message.SecureMessage, error) {
		return nil, newTransformError(OpEncrypt, iMsg.Envelope, err)
	}
	if err := iMsg.Validate(); err != nil {
		return fail(err)
	}
	if len(password) == 0 {
		return fail(malformed("empty password"))
	}

	t.log.WithFields(logrus.Fields{
		"function": "Encrypt",
		"sender":   iMsg.Sender,
		"receiver": iMsg.Receiver,
		"type":     iMsg.Content.Type.String(),
		"members":  len(members),
	}).Debug("Encrypting instant message")

	data, err := t.crypto.EncryptContent(iMsg, iMsg.Content, password)
	if err != nil {
		return fail(fmt.Errorf("failed to encrypt content: %w", err))
	}
	if len(data) == 0 {
		return fail(errEmptyCiphertext)
	}

	sMsg := &message.SecureMessage{
		Envelope: iMsg.Envelope,
		Data:     encodeField(data),
	}

	if len(members) == 0 {
		key, err := t.crypto.EncryptKey(iMsg, password, iMsg.Receiver)
		if err != nil {
			return fail(fmt.Errorf("failed to encrypt key for %s: %w", iMsg.Receiver, err))
		}
		if len(key) > 0 {
			sMsg.Key = encodeField(key)
		}
		return sMsg, nil
	}

	keys, err := t.encryptKeys(iMsg, password, members)
	if err != nil {
		return fail(err)
	}
	sMsg.Keys = keys
	return sMsg, nil
}

// encryptKeys encrypts password once for each distinct member.
func (t *Transformer) encryptKeys(iMsg *message.InstantMessage, password []byte, members []message.ID) (message.Keys, error) {
	keys := make(message.Keys, len(members))
	seen := make(map[message.ID]struct{}, len(members))
	for _, member := range members {
		if member.IsEmpty() {
			return nil, malformed("empty group member")
		}
		if _, dup := seen[member]; dup {
			continue
		}
		seen[member] = struct{}{}

		key, err := t.crypto.EncryptKey(iMsg, password, member)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt key for %s: %w", member, err)
		}
		if len(key) > 0 {
			keys[member] = encodeField(key)
		}
	}
	return keys, nil
}

// Decrypt decrypts a single-recipient message, or a group message that has
// already been narrowed with Split or Trim, using its Key.
func (t *Transformer) Decrypt(sMsg *message.SecureMessage) (*message.InstantMessage, error) {
	return t.decrypt(sMsg, "")
}

// DecryptForMember decrypts a group message on behalf of member. The key is
// taken from Keys[member] when Keys is present, otherwise from Key. The group
// passed to the capability is sMsg.Group, or sMsg.Receiver if unset.
func (t *Transformer) DecryptForMember(sMsg *message.SecureMessage, member message.ID) (*message.InstantMessage, error) {
	if member.IsEmpty() {
		if sMsg == nil {
			return nil, &TransformError{Op: OpDecrypt, Err: malformed("empty member")}
		}
		return nil, newTransformError(OpDecrypt, sMsg.Envelope, malformed("empty member"))
	}
	return t.decrypt(sMsg, member)
}

func (t *Transformer) decrypt(sMsg *message.SecureMessage, member message.ID) (*message.InstantMessage, error) {
	if sMsg == nil {
		return nil, &TransformError{Op: OpDecrypt, Err: malformed("nil secure message")}
	}
	fail := func(err error) (*message.InstantMessage, error) {
		return nil, newTransformError(OpDecrypt, sMsg.Envelope, err)
	}
	if err := sMsg.Validate(); err != nil {
		return fail(err)
	}

	group := sMsg.Group
	key := sMsg.Key
	if !member.IsEmpty() {
		if group.IsEmpty() {
			group = sMsg.Receiver
		}
		if sMsg.Keys != nil {
			key = sMsg.Keys[member]
		}
	}
	if key == "" {
		if member.IsEmpty() {
			return fail(ErrMissingKey)
		}
		return fail(fmt.Errorf("%w for member %s", ErrMissingKey, member))
	}

	t.log.WithFields(logrus.Fields{
		"function": "Decrypt",
		"sender":   sMsg.Sender,
		"receiver": sMsg.Receiver,
		"group":    group,
		"member":   member,
	}).Debug("Decrypting secure message")

	encryptedKey, err := t.decodeField("key", key)
	if err != nil {
		return fail(err)
	}
	data, err := t.decodeField("data", sMsg.Data)
	if err != nil {
		return fail(err)
	}

	password, err := t.crypto.DecryptKey(sMsg, encryptedKey, sMsg.Sender, sMsg.Receiver, group)
	if err != nil {
		return fail(classify(ErrKeyDecryption, err))
	}
	if len(password) == 0 {
		return fail(fmt.Errorf("%w: empty symmetric key", ErrKeyDecryption))
	}

	content, err := t.crypto.DecryptContent(sMsg, data, password)
	if err != nil {
		return fail(classify(ErrContentDecryption, err))
	}
	if content == nil {
		return fail(fmt.Errorf("%w: no content", ErrContentDecryption))
	}

	return &message.InstantMessage{
		Envelope: sMsg.Envelope,
		Content:  content,
	}, nil
}

// Sign signs the data of sMsg with the sender's key and returns a new
// ReliableMessage. Meta is left empty.
func (t *Transformer) Sign(sMsg *message.SecureMessage) (*message.ReliableMessage, error) {
	if sMsg == nil {
		return nil, &TransformError{Op: OpSign, Err: malformed("nil secure message")}
	}
	fail := func(err error) (*message.ReliableMessage, error) {
		return nil, newTransformError(OpSign, sMsg.Envelope, err)
	}
	if err := sMsg.Validate(); err != nil {
		return fail(err)
	}

	data, err := t.decodeField("data", sMsg.Data)
	if err != nil {
		return fail(err)
	}

	signature, err := t.crypto.Sign(sMsg, data, sMsg.Sender)
	if err != nil {
		return fail(fmt.Errorf("failed to sign data: %w", err))
	}
	if len(signature) == 0 {
		return fail(errEmptySignature)
	}

	t.log.WithFields(logrus.Fields{
		"function": "Sign",
		"sender":   sMsg.Sender,
		"receiver": sMsg.Receiver,
	}).Debug("Signed secure message")

	return &message.ReliableMessage{
		SecureMessage: *sMsg.Clone(),
		Signature:     encodeField(signature),
	}, nil
}

// Verify checks the signature of rMsg and returns the SecureMessage it
// covers. A signature that does not verify fails with
// ErrSignatureVerification and no message is returned. Missing or
// undecodable data and signature fields fail with both
// ErrSignatureVerification and ErrMalformedMessage.
func (t *Transformer) Verify(rMsg *message.ReliableMessage) (*message.SecureMessage, error) {
	if rMsg == nil {
		return nil, &TransformError{Op: OpVerify, Err: malformed("nil reliable message")}
	}
	fail := func(err error) (*message.SecureMessage, error) {
		return nil, newTransformError(OpVerify, rMsg.Envelope, err)
	}
	// unreadable data or signature fields count as failed verification
	if err := rMsg.Validate(); err != nil {
		return fail(classify(ErrSignatureVerification, err))
	}

	data, err := t.decodeField("data", rMsg.Data)
	if err != nil {
		return fail(classify(ErrSignatureVerification, err))
	}
	signature, err := t.decodeField("signature", rMsg.Signature)
	if err != nil {
		return fail(classify(ErrSignatureVerification, err))
	}

	ok, err := t.crypto.Verify(rMsg, data, signature, rMsg.Sender)
	if err != nil {
		return fail(classify(ErrSignatureVerification, err))
	}
	if !ok {
		t.log.WithFields(logrus.Fields{
			"function": "Verify",
			"sender":   rMsg.Sender,
			"receiver": rMsg.Receiver,
		}).Debug("Signature rejected")
		return fail(ErrSignatureVerification)
	}

	return rMsg.SecureMessage.Clone(), nil
}

func encodeField(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// decodeField decodes a base64 message field, enforcing the size limit
// before allocating.
func (t *Transformer) decodeField(name, field string) ([]byte, error) {
	if err := limits.ValidateEncodedField(field, t.maxDataSize); err != nil {
		return nil, malformed("%s: %v", name, err)
	}
	b, err := base64.StdEncoding.DecodeString(field)
	if err != nil {
		return nil, malformed("%s is not valid base64: %v", name, err)
	}
	return b, nil
}
