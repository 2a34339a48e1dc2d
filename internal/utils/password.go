package utils

import (
    "fmt"

    "golang.org/x/crypto/bcrypt"
)

// HashPassword bcrypt-hashes a password.  A cost outside bcrypt's range
// falls back to bcrypt.DefaultCost.  Passwords longer than 72 bytes are
// refused rather than silently truncated.
func HashPassword(plain string, cost int) (string, error) {
    if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
        cost = bcrypt.DefaultCost
    }
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", fmt.Errorf("hash password: %w", err)
    }
    return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.  An
// empty or malformed hash never matches.
func VerifyPassword(hash, plain string) bool {
    if hash == "" {
        return false
    }
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
