package main

import (
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validateEmail(email string) error {
	if _, err := netmail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: bad email %q", ErrInvalidInput, email)
	}
	return nil
}

// tokenClaims mirrors the user record minus the signup date.
type tokenClaims struct {
	UserID   int64  `json:"uid"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// tokens issues and verifies the bearer credential. Stateless: everything a
// verifier needs is in the signed payload plus the shared secret.
type tokens struct {
	secret []byte
	ttl    time.Duration
}

func newTokens(cfg Config) *tokens {
	return &tokens{secret: []byte(cfg.TokenSecret), ttl: cfg.TokenTTL}
}

func (t *tokens) Issue(u User) (string, error) {
	claims := tokenClaims{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(t.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks the signature (and expiry when present) and returns the
// embedded user id. It does not touch storage; callers still have to load
// the subject and may find it gone.
func (t *tokens) Verify(raw string) (int64, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.UserID == 0 {
		return 0, fmt.Errorf("%w: token without subject", ErrUnauthorized)
	}
	return claims.UserID, nil
}

// bearerToken extracts the credential from an Authorization header value.
func bearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if header == "" || !strings.HasPrefix(header, prefix) {
		return "", errors.New("missing bearer token")
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}
