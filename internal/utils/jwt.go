// Package utils mints and checks access tokens and password hashes.
package utils

import (
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails to parse, verify
// or carry a usable subject.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed HS256 JWT and the moment it expires.  Clients
// send Token as "Authorization: Bearer <token>".
type AccessToken struct {
    Token string    `json:"token"`
    Exp   time.Time `json:"expires"`
}

// Claims is the identity carried by an access token.
type Claims struct {
    UserID uint64
    Role   string
}

// NewAccessToken signs a token whose numeric "sub" is the user id and
// whose "role" claim drives authorization.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and extracts its claims.
// Only HMAC signatures are accepted; exp is enforced when present.
func ParseAccessToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }

    var id uint64
    switch v := mc["sub"].(type) {
    case float64:
        if v > 0 {
            id = uint64(v)
        }
    case string:
        id, _ = strconv.ParseUint(v, 10, 64)
    }
    if id == 0 {
        return Claims{}, ErrInvalidToken
    }
    role, _ := mc["role"].(string)
    return Claims{UserID: id, Role: role}, nil
}
