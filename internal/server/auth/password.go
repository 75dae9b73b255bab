package auth

import (
	"strings"

	"github.com/dmitrijs2005/accounts/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const (
	HashFactor = 10

	// unusablePrefix marks a stored credential that no password can match.
	unusablePrefix = "!"
	unusableLen    = 20
)

// HashPassword returns the bcrypt hash of password. Passwords longer than
// 72 bytes are rejected by bcrypt.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), HashFactor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MakeUnusablePassword returns a random marker for accounts created without
// a password.
func MakeUnusablePassword() (string, error) {
	s, err := common.MakeRandHexString(unusableLen)
	if err != nil {
		return "", err
	}
	return unusablePrefix + s, nil
}

func IsUsablePassword(hash string) bool {
	return hash != "" && !strings.HasPrefix(hash, unusablePrefix)
}

// CheckPassword reports whether password matches hash. Unusable hashes
// never match.
func CheckPassword(hash, password string) bool {
	if !IsUsablePassword(hash) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
