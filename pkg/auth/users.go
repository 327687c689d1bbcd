package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UserDirectory maps dashboard logins to roles. Passwords are stored as
// salted sha256 digests in the same YAML file as the role assignments.
type UserDirectory struct {
	Users map[string]UserRecord `yaml:"users"`
}

type UserRecord struct {
	Hash string `yaml:"hash"`
	Salt string `yaml:"salt"`
	Role string `yaml:"role"`
}

func LoadUsers(path string) (*UserDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var dir UserDirectory
	if err := yaml.Unmarshal(raw, &dir); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	for name, rec := range dir.Users {
		if rec.Role == "" {
			return nil, fmt.Errorf("user %q has no role", name)
		}
	}
	return &dir, nil
}

// Authenticate returns the user's role when the password checks out.
func (d *UserDirectory) Authenticate(user, password string) (string, error) {
	rec, ok := d.Users[user]
	if !ok {
		return "", fmt.Errorf("unknown user")
	}
	digest := HashPassword(password, rec.Salt)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(rec.Hash)) != 1 {
		return "", fmt.Errorf("wrong password")
	}
	return rec.Role, nil
}

func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}
