package couch

import (
	"crypto/rsa"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Authenticator attaches credentials to an outgoing request. The client
// holds no credential storage of its own; authenticators carry whatever
// they need and are applied per request.
type Authenticator interface {
	Authenticate(req *http.Request) error
}

type basicAuth struct {
	username string
	password string
}

// BasicAuth returns an authenticator using HTTP basic authentication.
func BasicAuth(username, password string) Authenticator {
	return &basicAuth{username: username, password: password}
}

func (a *basicAuth) Authenticate(req *http.Request) error {
	req.SetBasicAuth(a.username, a.password)
	return nil
}

// jwtClaims carries the registered claims plus the roles claim the
// CouchDB JWT authentication handler reads.
type jwtClaims struct {
	Roles []string `json:"_couchdb.roles,omitempty"`
	jwt.RegisteredClaims
}

type jwtAuth struct {
	subject string
	roles   []string
	ttl     time.Duration
	method  jwt.SigningMethod
	key     interface{}
}

const defaultTokenTTL = 5 * time.Minute

// JWTAuthHS256 returns an authenticator that mints a bearer token per
// request, signed with the shared secret configured in the server's JWT
// authentication handler. A non-positive ttl falls back to five minutes.
func JWTAuthHS256(subject string, secret []byte, ttl time.Duration, roles ...string) Authenticator {
	return &jwtAuth{
		subject: subject,
		roles:   roles,
		ttl:     ttl,
		method:  jwt.SigningMethodHS256,
		key:     secret,
	}
}

// JWTAuthRS256 is JWTAuthHS256 with RSA signing instead of a shared
// secret.
func JWTAuthRS256(subject string, key *rsa.PrivateKey, ttl time.Duration, roles ...string) Authenticator {
	return &jwtAuth{
		subject: subject,
		roles:   roles,
		ttl:     ttl,
		method:  jwt.SigningMethodRS256,
		key:     key,
	}
}

func (a *jwtAuth) Authenticate(req *http.Request) error {
	now := time.Now()
	ttl := a.ttl
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	claims := jwtClaims{
		Roles: a.roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(a.method, claims)
	signed, err := token.SignedString(a.key)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+signed)
	return nil
}
