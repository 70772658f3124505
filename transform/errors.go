package transform

import (
	"errors"
	"fmt"

	"github.com/opd-ai/dkd/message"
)

// Sentinel errors for transform operations.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrMissingKey indicates decrypt found neither a key nor a keys entry
	// for the requested member.
	ErrMissingKey = errors.New("decrypt key not found")

	// ErrKeyDecryption indicates the symmetric key could not be decrypted.
	ErrKeyDecryption = errors.New("key decryption failed")

	// ErrContentDecryption indicates the content could not be decrypted or
	// authenticated.
	ErrContentDecryption = errors.New("content decryption failed")

	// ErrSignatureVerification indicates the signature does not match the
	// data and sender.
	ErrSignatureVerification = errors.New("signature verification failed")

	// ErrMalformedMessage indicates a required field is absent or ill-typed
	// for the requested operation.
	ErrMalformedMessage = message.ErrMalformedMessage

	// ErrNilCrypto indicates a Transformer was built without a capability.
	ErrNilCrypto = errors.New("crypto capability is nil")
)

// Operation names reported in TransformError.Op.
const (
	OpEncrypt = "encrypt"
	OpDecrypt = "decrypt"
	OpSign    = "sign"
	OpVerify  = "verify"
	OpSplit   = "split"
	OpTrim    = "trim"
)

// TransformError records the failed operation and the envelope of the
// message it was applied to.
type TransformError struct {
	Op       string     // operation that failed
	Sender   message.ID // sender of the message, if known
	Receiver message.ID // receiver of the message, if known
	Err      error      // underlying error
}

func (e *TransformError) Error() string {
	if e.Sender != "" || e.Receiver != "" {
		return fmt.Sprintf("transform %s %s -> %s: %v", e.Op, e.Sender, e.Receiver, e.Err)
	}
	return fmt.Sprintf("transform %s: %v", e.Op, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

func newTransformError(op string, env message.Envelope, err error) *TransformError {
	return &TransformError{
		Op:       op,
		Sender:   env.Sender,
		Receiver: env.Receiver,
		Err:      err,
	}
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedMessage, fmt.Sprintf(format, args...))
}

// classify makes err match sentinel while keeping the capability's own error
// matchable too.
func classify(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
