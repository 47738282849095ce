package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tuckshop/backend/internal/config"
	"golang.org/x/crypto/argon2"
)

// PasswordHasher hashes with argon2id. Encoded hashes are "salt$hash",
// both base64.
type PasswordHasher struct {
	cfg config.Argon2Config
}

func NewPasswordHasher(cfg config.Argon2Config) *PasswordHasher {
	return &PasswordHasher{cfg: cfg}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := h.derive(password, salt)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

// Dummy returns a well-formed encoded hash over a zero salt. Verify against
// it runs a full derivation and fails for any real password.
func (h *PasswordHasher) Dummy() string {
	salt := make([]byte, h.cfg.SaltLength)
	hash := h.derive("unknown-account", salt)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash))
}

func (h *PasswordHasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(hash, h.derive(password, salt)) == 1
}

func (h *PasswordHasher) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, h.cfg.Time, h.cfg.Memory, h.cfg.Threads, h.cfg.KeyLength)
}
