package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "nestegg"

type sessionClaims struct {
	Data
	jwt.RegisteredClaims
}

// CookieStore keeps the whole session client-side in an HS256-signed token.
type CookieStore struct {
	secret []byte
	cookie CookieOptions
	now    func() time.Time
}

// NewCookieStore signs session cookies with secret.
func NewCookieStore(secret []byte, cookie CookieOptions) (*CookieStore, error) {
	if len(secret) == 0 {
		return nil, errors.New("cookie session store requires a secret key")
	}
	return &CookieStore{
		secret: secret,
		cookie: cookie,
		now:    time.Now,
	}, nil
}

// Load verifies and decodes the session cookie.
func (s *CookieStore) Load(c fiber.Ctx) (*Data, error) {
	raw := c.Cookies(s.cookie.name())
	if raw == "" {
		return nil, nil
	}
	return s.decode(raw)
}

// Save re-signs the session and refreshes the cookie expiry.
func (s *CookieStore) Save(c fiber.Ctx, data *Data) error {
	now := s.now()
	token, err := s.encode(data, now)
	if err != nil {
		return err
	}
	s.cookie.write(c, token, now)
	return nil
}

func (s *CookieStore) encode(data *Data, now time.Time) (string, error) {
	claims := sessionClaims{
		Data: *data,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cookie.ttl())),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func (s *CookieStore) decode(raw string) (*Data, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if claims.OwnerID == "" {
		return nil, fmt.Errorf("%w: missing owner", ErrInvalid)
	}
	data := claims.Data
	return &data, nil
}
