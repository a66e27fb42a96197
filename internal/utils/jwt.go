package utils // package utils provides helpers for password hashing and session tokens

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is what an access token asserts about its bearer.
type AccessClaims struct {
	UserID   uint64
	Email    string
	Username string
}

// SignedToken is a serialized JWT together with its expiry.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// TokenPair is what a login or refresh hands back to the client.
type TokenPair struct {
	Access  SignedToken
	Refresh SignedToken
}

// ErrInvalidToken covers every parse, signature, algorithm and expiry failure.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT carrying the user's id,
// email and username.  The subject is the decimal user id.
func NewAccessToken(secret string, c AccessClaims, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(c.UserID, 10),
		"email":    c.Email,
		"username": c.Username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	return sign(secret, claims, exp)
}

// NewRefreshToken signs a longer-lived HS256 JWT that carries only the user
// id.  A random jti keeps two tokens issued in the same second distinct,
// which matters because rotation compares tokens by value.
func NewRefreshToken(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
	jti, err := randomHex(16)
	if err != nil {
		return SignedToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(userID, 10),
		"jti": jti,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	return sign(secret, claims, exp)
}

func sign(secret string, claims jwt.MapClaims, exp time.Time) (SignedToken, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates signature, algorithm and expiry and returns the
// embedded claims.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
	mc, err := parse(secret, raw)
	if err != nil {
		return AccessClaims{}, err
	}
	id, err := subject(mc)
	if err != nil {
		return AccessClaims{}, err
	}
	email, _ := mc["email"].(string)
	username, _ := mc["username"].(string)
	return AccessClaims{UserID: id, Email: email, Username: username}, nil
}

// ParseRefreshToken validates a refresh token and returns its user id.
func ParseRefreshToken(secret, raw string) (uint64, error) {
	mc, err := parse(secret, raw)
	if err != nil {
		return 0, err
	}
	return subject(mc)
}

func parse(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return mc, nil
}

func subject(mc jwt.MapClaims) (uint64, error) {
	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}
