package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/opd-ai/dkd/message"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations is the number of iterations for key derivation (NIST recommendation)
	PBKDF2Iterations = 100000
	// StoreVersion is the current on-disk record format version
	StoreVersion = 1
	// SaltSize is the size of the salt for PBKDF2
	SaltSize = 32

	identityExt = ".identity"
	saltName    = ".salt"
)

// ErrIdentityNotFound is returned by Load for an identity that was never saved.
var ErrIdentityNotFound = errors.New("identity not found in store")

// IdentityStore keeps identities on disk, encrypted at rest with a key
// derived from a passphrase. Each identity is one file:
//
//	[version:2][nonce:24][secretbox(json(identity))]
//
// File names are the hex encoded ID, so arbitrary IDs cannot escape the
// store directory.
type IdentityStore struct {
	mu       sync.Mutex
	dir      string
	saltFile string
	key      [SymmetricKeySize]byte
}

type storedIdentity struct {
	ID            message.ID `json:"id"`
	EncryptionKey []byte     `json:"encryption_key"`
	SigningSeed   []byte     `json:"signing_seed"`
}

// NewIdentityStore opens or creates a store in dir. The passphrase is wiped
// once the storage key has been derived.
func NewIdentityStore(dir string, passphrase []byte) (*IdentityStore, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s := &IdentityStore{
		dir:      dir,
		saltFile: filepath.Join(dir, saltName),
	}

	salt, err := s.loadOrGenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize salt: %w", err)
	}

	derived := pbkdf2.Key(passphrase, salt, PBKDF2Iterations, SymmetricKeySize, sha256.New)
	copy(s.key[:], derived)
	SecureWipe(derived)
	SecureWipe(passphrase)

	return s, nil
}

func (s *IdentityStore) loadOrGenerateSalt() ([]byte, error) {
	data, err := os.ReadFile(s.saltFile)
	if err == nil {
		if len(data) != SaltSize {
			return nil, fmt.Errorf("invalid salt file size: got %d, want %d", len(data), SaltSize)
		}
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := os.WriteFile(s.saltFile, salt, 0o600); err != nil {
		return nil, fmt.Errorf("failed to save salt: %w", err)
	}
	return salt, nil
}

func (s *IdentityStore) path(id message.ID) string {
	return filepath.Join(s.dir, hex.EncodeToString([]byte(id))+identityExt)
}

// Save writes the identity, replacing any earlier record for the same ID.
func (s *IdentityStore) Save(identity *Identity) error {
	if identity == nil || identity.Encryption == nil {
		return errors.New("cannot save incomplete identity")
	}
	if identity.ID.IsEmpty() {
		return errors.New("identity ID cannot be empty")
	}

	plaintext, err := json.Marshal(storedIdentity{
		ID:            identity.ID,
		EncryptionKey: identity.Encryption.Private[:],
		SigningSeed:   identity.SigningSeed[:],
	})
	if err != nil {
		return fmt.Errorf("failed to serialize identity: %w", err)
	}
	defer ZeroBytes(plaintext)

	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, 2, 2+len(nonce)+len(plaintext)+secretbox.Overhead)
	binary.BigEndian.PutUint16(out, StoreVersion)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, plaintext, &nonce, &s.key)

	// Atomic write using temporary file + rename
	final := s.path(identity.ID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	NewLogger("IdentityStore.Save").
		WithField("identity", identity.ID).
		Debug("Identity saved")
	return nil
}

// Load reads and decrypts the identity saved under id.
func (s *IdentityStore) Load(id message.ID) (*Identity, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path(id))
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, id)
		}
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}

	if len(data) < 2+24+secretbox.Overhead {
		return nil, fmt.Errorf("identity record too short: %d bytes", len(data))
	}
	if version := binary.BigEndian.Uint16(data[:2]); version != StoreVersion {
		return nil, fmt.Errorf("unsupported store version: %d (expected %d)", version, StoreVersion)
	}

	var nonce [24]byte
	copy(nonce[:], data[2:26])
	plaintext, ok := secretbox.Open(nil, data[26:], &nonce, &s.key)
	if !ok {
		return nil, fmt.Errorf("%w: wrong passphrase or corrupted record", ErrDecryptionFailed)
	}
	defer ZeroBytes(plaintext)

	var stored storedIdentity
	if err := json.Unmarshal(plaintext, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse identity: %w", err)
	}
	defer ZeroBytes(stored.EncryptionKey)
	defer ZeroBytes(stored.SigningSeed)

	if stored.ID != id {
		return nil, fmt.Errorf("identity record for %s holds %s", id, stored.ID)
	}
	if len(stored.EncryptionKey) != 32 || len(stored.SigningSeed) != 32 {
		return nil, fmt.Errorf("identity record for %s has invalid key sizes", id)
	}

	var secret [32]byte
	copy(secret[:], stored.EncryptionKey)
	kp, err := FromSecretKey(secret)
	ZeroBytes(secret[:])
	if err != nil {
		return nil, err
	}

	identity := &Identity{ID: stored.ID, Encryption: kp}
	copy(identity.SigningSeed[:], stored.SigningSeed)
	return identity, nil
}

// Delete overwrites and removes the record for id. Deleting a missing
// identity is not an error.
func (s *IdentityStore) Delete(id message.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.path(id)
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat identity: %w", err)
	}

	// best-effort overwrite before removal
	if err := os.WriteFile(p, make([]byte, info.Size()), 0o600); err != nil {
		NewLogger("IdentityStore.Delete").
			WithField("identity", id).
			WithError(err, "overwrite").
			Warn("Failed to overwrite identity record before removal")
	}
	return os.Remove(p)
}

// List returns the IDs of all saved identities.
func (s *IdentityStore) List() ([]message.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list store: %w", err)
	}

	var ids []message.ID
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, identityExt) {
			continue
		}
		raw, err := hex.DecodeString(strings.TrimSuffix(name, identityExt))
		if err != nil {
			continue
		}
		ids = append(ids, message.ID(raw))
	}
	return ids, nil
}

// Close wipes the storage key. The store must not be used afterwards.
func (s *IdentityStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ZeroBytes(s.key[:])
	return nil
}
