// Package auth implements the opaque bearer token service: tokens are
// HMAC-signed JWTs (mirroring the teacher's security.Generate/Verify
// pattern), backed by a server-side record so a token can be revoked on
// logout and expired records are purged on lookup rather than trusted to
// linger.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Options controls signing algorithm, secret, and token lifetime.
type Options struct {
	Secret []byte
	Alg    string // HS256/HS384/HS512, default HS256
	TTL    time.Duration
}

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, Alg: "HS256", TTL: 300 * time.Second}
}

type record struct {
	userID    string
	expiresAt time.Time
}

// TokenService issues and validates bearer tokens for a single user_id at
// a time; validate(token) → user_id follows the spec contract, with
// expired records purged lazily on lookup.
type TokenService struct {
	opts Options

	mu      sync.Mutex
	records map[string]record // keyed by sha256(token) hex
}

func NewTokenService(opts Options) *TokenService {
	if opts.TTL <= 0 {
		opts.TTL = 300 * time.Second
	}
	return &TokenService{opts: opts, records: make(map[string]record)}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Issue mints a signed token for userID and records it server-side so it
// can be validated or revoked without re-parsing the JWT.
func (s *TokenService) Issue(userID string, now time.Time) (string, error) {
	method, err := signingMethod(s.opts.Alg)
	if err != nil {
		return "", err
	}
	exp := now.Add(s.opts.TTL)
	claims := jwtlib.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	tok := jwtlib.NewWithClaims(method, claims)
	signed, err := tok.SignedString(s.opts.Secret)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.records[hashToken(signed)] = record{userID: userID, expiresAt: exp}
	s.mu.Unlock()

	return signed, nil
}

// Validate parses and verifies token, checks its server-side record hasn't
// expired or been revoked, and returns the bound user_id.
func (s *TokenService) Validate(token string, now time.Time) (string, bool) {
	method, err := signingMethod(s.opts.Alg)
	if err != nil {
		return "", false
	}

	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		if t.Method.Alg() != method.Alg() {
			return nil, fmt.Errorf("auth: unexpected alg %v", t.Header["alg"])
		}
		return s.opts.Secret, nil
	}, jwtlib.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !parsed.Valid {
		return "", false
	}

	key := hashToken(token)
	s.mu.Lock()
	rec, ok := s.records[key]
	if ok && now.After(rec.expiresAt) {
		delete(s.records, key)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	return rec.userID, true
}

// Revoke purges the server-side record for token, independent of JWT
// expiry, so a logout invalidates the token immediately.
func (s *TokenService) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, hashToken(token))
}

// PurgeExpired sweeps every record past its expiry; callers may invoke
// this periodically instead of relying solely on purge-on-lookup.
func (s *TokenService) PurgeExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, rec := range s.records {
		if now.After(rec.expiresAt) {
			delete(s.records, k)
			n++
		}
	}
	return n
}

func signingMethod(alg string) (jwtlib.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case "", "HS256":
		return jwtlib.SigningMethodHS256, nil
	case "HS384":
		return jwtlib.SigningMethodHS384, nil
	case "HS512":
		return jwtlib.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("auth: unsupported alg %q (use HS256/HS384/HS512)", alg)
	}
}
