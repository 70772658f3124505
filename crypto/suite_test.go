package crypto

import (
	"testing"

	"github.com/opd-ai/dkd/message"
	"github.com/opd-ai/dkd/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNetwork gives every named user an identity, a suite and a
// transformer sharing one directory.
type testNetwork struct {
	dir          *MemoryDirectory
	identities   map[message.ID]*Identity
	suites       map[message.ID]*Suite
	transformers map[message.ID]*transform.Transformer
}

func newTestNetwork(t *testing.T, opts *SuiteOptions, users ...message.ID) *testNetwork {
	t.Helper()
	n := &testNetwork{
		dir:          NewMemoryDirectory(),
		identities:   make(map[message.ID]*Identity),
		suites:       make(map[message.ID]*Suite),
		transformers: make(map[message.ID]*transform.Transformer),
	}
	for _, user := range users {
		id, err := GenerateIdentity(user)
		require.NoError(t, err)
		require.NoError(t, n.dir.Register(id.Profile()))

		suite, err := NewSuite(id, n.dir, opts)
		require.NoError(t, err)
		tf, err := transform.NewTransformer(suite, nil)
		require.NoError(t, err)

		n.identities[user] = id
		n.suites[user] = suite
		n.transformers[user] = tf
	}
	return n
}

func TestNewSuiteValidation(t *testing.T) {
	id, err := GenerateIdentity("alice")
	require.NoError(t, err)
	dir := NewMemoryDirectory()

	_, err = NewSuite(nil, dir, nil)
	assert.Error(t, err)

	_, err = NewSuite(id, nil, nil)
	assert.Error(t, err)

	_, err = NewSuite(id, dir, &SuiteOptions{Cipher: "ROT13"})
	assert.Error(t, err)

	suite, err := NewSuite(id, dir, &SuiteOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultContentCipher, suite.Cipher())
	assert.Equal(t, message.ID("alice"), suite.Self())
}

func TestSuitePipeline(t *testing.T) {
	for _, cipher := range SupportedContentCiphers {
		t.Run(cipher.String(), func(t *testing.T) {
			net := newTestNetwork(t, &SuiteOptions{Cipher: cipher}, "alice", "bob")
			alice, bob := net.transformers["alice"], net.transformers["bob"]

			content := message.NewTextContent(1, "hi")
			iMsg := message.NewInstantMessage(message.Envelope{Sender: "alice", Receiver: "bob", Time: 1000}, content)

			password, err := GeneratePassword()
			require.NoError(t, err)

			sMsg, err := alice.Encrypt(iMsg, password, nil)
			require.NoError(t, err)
			assert.NotEmpty(t, sMsg.Key)
			assert.Nil(t, sMsg.Keys)

			rMsg, err := alice.Sign(sMsg)
			require.NoError(t, err)

			verified, err := bob.Verify(rMsg)
			require.NoError(t, err)
			assert.Equal(t, sMsg, verified)

			decrypted, err := bob.Decrypt(verified)
			require.NoError(t, err)
			assert.Equal(t, iMsg, decrypted)
		})
	}
}

func TestSuiteGroupPipeline(t *testing.T) {
	net := newTestNetwork(t, nil, "alice", "bob", "carol", "dave")
	members := []message.ID{"bob", "carol", "dave"}

	content := message.NewTextContent(7, "hello group")
	content.Group = "friends"
	iMsg := message.NewInstantMessage(message.Envelope{Sender: "alice", Receiver: "friends", Time: 1000}, content)

	password, err := GeneratePassword()
	require.NoError(t, err)

	sMsg, err := net.transformers["alice"].Encrypt(iMsg, password, members)
	require.NoError(t, err)
	require.Len(t, sMsg.Keys, 3)
	assert.NotEqual(t, sMsg.Keys["bob"], sMsg.Keys["carol"], "each member needs its own sealed key")

	rMsg, err := net.transformers["alice"].Sign(sMsg)
	require.NoError(t, err)

	perMember, err := net.transformers["alice"].SplitReliable(rMsg, members)
	require.NoError(t, err)
	require.Len(t, perMember, 3)

	for i, member := range members {
		tf := net.transformers[member]

		verified, err := tf.Verify(perMember[i])
		require.NoError(t, err, member)
		assert.Equal(t, message.ID("friends"), verified.Group)

		decrypted, err := tf.DecryptForMember(verified, member)
		require.NoError(t, err, member)
		assert.Equal(t, "hello group", decrypted.Content.Text())
		assert.Equal(t, message.ID("friends"), decrypted.Content.Group)

		// The same member can also decrypt the undivided group message
		direct, err := tf.DecryptForMember(sMsg, member)
		require.NoError(t, err, member)
		assert.Equal(t, decrypted, direct)
	}

	// A member cannot open another member's key
	_, err = net.transformers["bob"].Decrypt(&perMember[1].SecureMessage)
	assert.ErrorIs(t, err, transform.ErrKeyDecryption)
}

func TestSuiteDecryptKeyWrongReceiver(t *testing.T) {
	net := newTestNetwork(t, nil, "alice", "bob", "carol")

	iMsg := message.NewInstantMessage(message.Envelope{Sender: "alice", Receiver: "bob", Time: 1000},
		message.NewTextContent(1, "for bob only"))
	password, err := GeneratePassword()
	require.NoError(t, err)

	sMsg, err := net.transformers["alice"].Encrypt(iMsg, password, nil)
	require.NoError(t, err)

	_, err = net.transformers["carol"].Decrypt(sMsg)
	assert.ErrorIs(t, err, transform.ErrKeyDecryption)

	// Pretending to be a group member does not help: the key is sealed to bob
	_, err = net.transformers["carol"].DecryptForMember(sMsg, "carol")
	assert.ErrorIs(t, err, transform.ErrKeyDecryption)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestSuiteContentCipherMismatch(t *testing.T) {
	dir := NewMemoryDirectory()
	alice, err := GenerateIdentity("alice")
	require.NoError(t, err)
	bob, err := GenerateIdentity("bob")
	require.NoError(t, err)
	require.NoError(t, dir.Register(alice.Profile()))
	require.NoError(t, dir.Register(bob.Profile()))

	aliceSuite, err := NewSuite(alice, dir, &SuiteOptions{Cipher: CipherChaChaPoly})
	require.NoError(t, err)
	bobSuite, err := NewSuite(bob, dir, &SuiteOptions{Cipher: CipherAESGCM})
	require.NoError(t, err)

	aliceTF, err := transform.NewTransformer(aliceSuite, nil)
	require.NoError(t, err)
	bobTF, err := transform.NewTransformer(bobSuite, nil)
	require.NoError(t, err)

	iMsg := message.NewInstantMessage(message.Envelope{Sender: "alice", Receiver: "bob", Time: 1000},
		message.NewTextContent(1, "hi"))
	sMsg, err := aliceTF.Encrypt(iMsg, []byte("P"), nil)
	require.NoError(t, err)

	_, err = bobTF.Decrypt(sMsg)
	assert.ErrorIs(t, err, transform.ErrContentDecryption)
}

func TestSuiteEncryptKeyUnknownReceiver(t *testing.T) {
	net := newTestNetwork(t, nil, "alice")

	iMsg := message.NewInstantMessage(message.Envelope{Sender: "alice", Receiver: "nobody", Time: 1000},
		message.NewTextContent(1, "hi"))
	_, err := net.transformers["alice"].Encrypt(iMsg, []byte("P"), nil)
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}

func TestSuiteSignRequiresSelf(t *testing.T) {
	net := newTestNetwork(t, nil, "alice", "bob")

	sMsg := &message.SecureMessage{
		Envelope: message.Envelope{Sender: "bob", Receiver: "alice", Time: 1000},
		Data:     "ZGF0YQ==",
		Key:      "a2V5",
	}
	_, err := net.transformers["alice"].Sign(sMsg)
	assert.ErrorIs(t, err, ErrNotSelf)
}

func TestSuiteVerifyRejects(t *testing.T) {
	net := newTestNetwork(t, nil, "alice", "bob")
	suite := net.suites["bob"]

	sMsg := &message.SecureMessage{
		Envelope: message.Envelope{Sender: "alice", Receiver: "bob", Time: 1000},
		Data:     "ZGF0YQ==",
		Key:      "a2V5",
	}
	rMsg, err := net.transformers["alice"].Sign(sMsg)
	require.NoError(t, err)

	// wrong signature length
	ok, err := suite.Verify(rMsg, []byte("data"), []byte("short"), "alice")
	assert.NoError(t, err)
	assert.False(t, ok)

	// unknown sender
	_, err = suite.Verify(rMsg, []byte("data"), make([]byte, SignatureSize), "mallory")
	assert.ErrorIs(t, err, ErrUnknownIdentity)

	_, err = net.transformers["bob"].Verify(&message.ReliableMessage{
		SecureMessage: message.SecureMessage{Envelope: message.Envelope{Sender: "mallory", Receiver: "bob"}, Data: "ZA=="},
		Signature:     rMsg.Signature,
	})
	assert.ErrorIs(t, err, transform.ErrSignatureVerification)
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}

func TestSuiteMaxContentSize(t *testing.T) {
	net := newTestNetwork(t, &SuiteOptions{MaxContentSize: 64}, "alice", "bob")

	small := message.NewInstantMessage(message.Envelope{Sender: "alice", Receiver: "bob", Time: 1},
		message.NewTextContent(1, "hi"))
	_, err := net.transformers["alice"].Encrypt(small, []byte("P"), nil)
	assert.NoError(t, err)

	big := message.NewInstantMessage(message.Envelope{Sender: "alice", Receiver: "bob", Time: 1},
		message.NewTextContent(1, string(make([]byte, 100))))
	_, err = net.transformers["alice"].Encrypt(big, []byte("P"), nil)
	assert.Error(t, err)
}

func BenchmarkSuiteEncryptSign(b *testing.B) {
	dir := NewMemoryDirectory()
	alice, _ := GenerateIdentity("alice")
	bob, _ := GenerateIdentity("bob")
	_ = dir.Register(alice.Profile())
	_ = dir.Register(bob.Profile())
	suite, _ := NewSuite(alice, dir, nil)
	tf, _ := transform.NewTransformer(suite, nil)

	iMsg := message.NewInstantMessage(message.Envelope{Sender: "alice", Receiver: "bob", Time: 1000},
		message.NewTextContent(1, "benchmark message"))
	password, _ := GeneratePassword()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sMsg, err := tf.Encrypt(iMsg, password, nil)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := tf.Sign(sMsg); err != nil {
			b.Fatal(err)
		}
	}
}
