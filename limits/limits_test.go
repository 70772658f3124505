package limits

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/nacl/secretbox"
)

// TestEncryptionOverheadMatchesNaCl verifies that our EncryptionOverhead constant
// matches the actual overhead from golang.org/x/crypto/nacl/secretbox
func TestEncryptionOverheadMatchesNaCl(t *testing.T) {
	if EncryptionOverhead != secretbox.Overhead {
		t.Errorf("EncryptionOverhead = %d, want %d (secretbox.Overhead)", EncryptionOverhead, secretbox.Overhead)
	}
}

// TestMaxCiphertextFitsMaxContent seals a max-size content and checks the
// result stays within MaxCiphertextSize.
func TestMaxCiphertextFitsMaxContent(t *testing.T) {
	var key [32]byte
	var nonce [24]byte
	if _, err := rand.Read(key[:]); err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		t.Fatalf("Failed to generate nonce: %v", err)
	}

	content := make([]byte, MaxContentSize)
	sealed := secretbox.Seal(nonce[:], content, &nonce, &key)

	if len(sealed) > MaxCiphertextSize {
		t.Errorf("sealed max-size content is %d bytes, exceeds MaxCiphertextSize (%d)", len(sealed), MaxCiphertextSize)
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantErr error
	}{
		{"nil content", nil, ErrMessageEmpty},
		{"empty content", []byte{}, ErrMessageEmpty},
		{"small content", []byte(`{"type":1,"sn":1,"text":"hi"}`), nil},
		{"max-size content", make([]byte, MaxContentSize), nil},
		{"content too large", make([]byte, MaxContentSize+1), ErrMessageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateContent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password []byte
		wantErr  error
	}{
		{"empty", nil, ErrMessageEmpty},
		{"single byte", []byte("P"), nil},
		{"32 bytes", make([]byte, 32), nil},
		{"max size", make([]byte, MaxPasswordSize), nil},
		{"too large", make([]byte, MaxPasswordSize+1), ErrMessageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePassword() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMessageSize(t *testing.T) {
	if err := ValidateMessageSize([]byte("abc"), 3); err != nil {
		t.Errorf("ValidateMessageSize() at limit returned %v", err)
	}
	err := ValidateMessageSize([]byte("abcd"), 3)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("ValidateMessageSize() error = %v, want ErrMessageTooLarge", err)
	}
	if !strings.Contains(err.Error(), "size 4 exceeds limit 3") {
		t.Errorf("error message lacks context: %q", err.Error())
	}
	if err := ValidateProcessingBuffer(nil); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("ValidateProcessingBuffer(nil) error = %v, want ErrMessageEmpty", err)
	}
}

func TestValidateEncodedField(t *testing.T) {
	exact := base64.StdEncoding.EncodeToString(make([]byte, 30))
	over := base64.StdEncoding.EncodeToString(make([]byte, 33))

	tests := []struct {
		name    string
		field   string
		max     int
		wantErr error
	}{
		{"empty", "", 30, ErrMessageEmpty},
		{"within limit", exact, 30, nil},
		{"over limit", over, 30, ErrMessageTooLarge},
		{"non-positive limit falls back to processing buffer", over, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEncodedField(tt.field, tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEncodedField() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
