package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/httpx"
)

const identityKey = "identity"

// Identity is the verified (user, role) pair the session provider vouches
// for. Nothing downstream re-verifies it.
type Identity struct {
	UserID uuid.UUID
	Role   domain.Role
}

func (i Identity) IsAdmin() bool { return i.Role == domain.RoleAdmin }

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier checks session tokens issued by the external auth provider using
// the shared HMAC secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token: %v", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject in session token: %v", err)
	}

	role := domain.Role(claims.Role)
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}

	return &Identity{UserID: userID, Role: role}, nil
}

// RequireAuth extracts and verifies the bearer token, storing the identity
// in the request locals.
func (v *Verifier) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return httpx.UnauthorizedResponse(c, "Authentication required")
		}

		identity, err := v.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return httpx.UnauthorizedResponse(c, "Authentication required")
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := IdentityFrom(c)
		if identity == nil || !identity.IsAdmin() {
			return httpx.ForbiddenResponse(c, "Admin access required")
		}
		return c.Next()
	}
}

func IdentityFrom(c *fiber.Ctx) *Identity {
	identity, _ := c.Locals(identityKey).(*Identity)
	return identity
}
