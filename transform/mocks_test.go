package transform

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"sync"

	"github.com/opd-ai/dkd/message"
)

// keyCall records a single EncryptKey invocation for assertion in tests.
type keyCall struct {
	receiver message.ID
	password string
}

// decryptKeyCall records the arguments DecryptKey saw.
type decryptKeyCall struct {
	sender   message.ID
	receiver message.ID
	group    message.ID
}

// mockCrypto is a reversible, deterministic stand-in for a real cipher
// suite. Content is XORed with the password, keys are "receiver|password"
// and signatures are sha256(sender || data).
type mockCrypto struct {
	mu              sync.Mutex
	keyCalls        []keyCall
	decryptKeyCalls []decryptKeyCall

	// self is the identity whose keys DecryptKey accepts
	self message.ID

	// reuseKeyFor makes EncryptKey return nothing for these receivers
	reuseKeyFor map[message.ID]bool

	encryptContentErr error
	encryptKeyErr     error
	decryptKeyErr     error
	decryptContentErr error
	signErr           error
	verifyErr         error
	emptySignature    bool
	nilContent        bool
}

func newMockCrypto(self message.ID) *mockCrypto {
	return &mockCrypto{self: self}
}

func xorWith(data, password []byte) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ password[i%len(password)]
	}
	return out
}

func (m *mockCrypto) EncryptContent(iMsg *message.InstantMessage, content *message.Content, password []byte) ([]byte, error) {
	if m.encryptContentErr != nil {
		return nil, m.encryptContentErr
	}
	plaintext, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return xorWith(plaintext, password), nil
}

func (m *mockCrypto) EncryptKey(iMsg *message.InstantMessage, password []byte, receiver message.ID) ([]byte, error) {
	m.mu.Lock()
	m.keyCalls = append(m.keyCalls, keyCall{receiver: receiver, password: string(password)})
	m.mu.Unlock()

	if m.encryptKeyErr != nil {
		return nil, m.encryptKeyErr
	}
	if m.reuseKeyFor[receiver] {
		return nil, nil
	}
	return []byte(string(receiver) + "|" + string(password)), nil
}

func (m *mockCrypto) DecryptKey(sMsg *message.SecureMessage, key []byte, sender, receiver, group message.ID) ([]byte, error) {
	m.mu.Lock()
	m.decryptKeyCalls = append(m.decryptKeyCalls, decryptKeyCall{sender: sender, receiver: receiver, group: group})
	m.mu.Unlock()

	if m.decryptKeyErr != nil {
		return nil, m.decryptKeyErr
	}
	parts := bytes.SplitN(key, []byte("|"), 2)
	if len(parts) != 2 || message.ID(parts[0]) != m.self {
		return nil, errors.New("wrong private key")
	}
	return parts[1], nil
}

func (m *mockCrypto) DecryptContent(sMsg *message.SecureMessage, data []byte, password []byte) (*message.Content, error) {
	if m.decryptContentErr != nil {
		return nil, m.decryptContentErr
	}
	if m.nilContent {
		return nil, nil
	}
	var content message.Content
	if err := json.Unmarshal(xorWith(data, password), &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func mockSignature(sender message.ID, data []byte) []byte {
	h := sha256.New()
	h.Write([]byte(sender))
	h.Write(data)
	return h.Sum(nil)
}

func (m *mockCrypto) Sign(sMsg *message.SecureMessage, data []byte, sender message.ID) ([]byte, error) {
	if m.signErr != nil {
		return nil, m.signErr
	}
	if m.emptySignature {
		return nil, nil
	}
	return mockSignature(sender, data), nil
}

func (m *mockCrypto) Verify(rMsg *message.ReliableMessage, data, signature []byte, sender message.ID) (bool, error) {
	if m.verifyErr != nil {
		return false, m.verifyErr
	}
	return bytes.Equal(signature, mockSignature(sender, data)), nil
}

func (m *mockCrypto) getKeyCalls() []keyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]keyCall(nil), m.keyCalls...)
}

func (m *mockCrypto) getDecryptKeyCalls() []decryptKeyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]decryptKeyCall(nil), m.decryptKeyCalls...)
}
