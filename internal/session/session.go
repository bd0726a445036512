// internal/session/session.go
//
// Player session tokens.
// A token binds one player id to one room code so the HTTP and WebSocket
// surfaces can trust who is guessing without accounts. Tokens are HS256 JWTs:
//   - sub:  player id
//   - room: room code
//   - iat/exp: issue and expiry times

package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("session: invalid token")

// Claims identifies a player inside a room.
type Claims struct {
	Room string `json:"room"`
	jwt.RegisteredClaims
}

// PlayerID returns the subject claim.
func (c *Claims) PlayerID() string { return c.Subject }

// Issuer signs and verifies session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer. A non-positive ttl defaults to 12 hours.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for playerID in room, and its expiry.
func (i *Issuer) Issue(room, playerID string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Room: room,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(i.secret)
	return ss, exp, err
}

// Parse verifies a token and returns its claims.
func (i *Issuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Room == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
