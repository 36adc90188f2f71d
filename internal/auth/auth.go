// Package auth registers and authenticates users and manages the signed
// session tokens (HS256 JWT) handed to clients. It also provides the HTTP
// middleware that puts the token owner into the request context.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/bookcatalog/internal/logger"
	"github.com/patric-chuzhbe/bookcatalog/internal/models"
	"github.com/patric-chuzhbe/bookcatalog/internal/user"
)

type credentialStore interface {
	Register(ctx context.Context, username, password string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	VerifyPassword(usr *user.User, candidate string) bool
}

// Auth handles user authentication and JWT token management.
type Auth struct {
	// credentials is the account store.
	credentials credentialStore

	// signingSecretKey is the key used to sign JWTs.
	signingSecretKey []byte

	// tokenTTL is added to the issue time to form the expiry.
	tokenTTL time.Duration

	// now returns the issue time of new tokens.
	now func() time.Time
}

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds the owning user's identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// Option customizes Auth.
type Option func(*Auth)

// WithClock replaces time.Now as the token issue clock.
func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		a.now = now
	}
}

// New creates a new Auth with the given credential store, JWT signing
// secret and token lifetime.
func New(
	credentials credentialStore,
	signingSecretKey []byte,
	tokenTTL time.Duration,
	opts ...Option,
) *Auth {
	a := &Auth{
		credentials:      credentials,
		signingSecretKey: signingSecretKey,
		tokenTTL:         tokenTTL,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Register creates the account and returns a token for it.
func (a *Auth) Register(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	usr, err := a.credentials.Register(ctx, username, password)
	if err != nil {
		return nil, err
	}

	return a.respond(usr)
}

// Login checks the credentials and returns a fresh token.
func (a *Auth) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	usr, err := a.credentials.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if usr == nil {
		return nil, models.ErrUserNotFound
	}

	if !a.credentials.VerifyPassword(usr, password) {
		return nil, models.ErrInvalidPassword
	}

	return a.respond(usr)
}

// IssueToken signs a token for userID that expires tokenTTL after now.
func (a *Auth) IssueToken(userID string) (string, error) {
	issuedAt := a.now()

	return a.BuildJWTString(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(a.tokenTTL)),
		},
		UserID: userID,
	})
}

// BuildJWTString signs the claims with HS256. The output depends only on
// the secret and the claims.
func (a *Auth) BuildJWTString(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(a.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies signature, algorithm and expiry and returns
// the embedded user id. Every failure wraps models.ErrInvalidToken.
func (a *Auth) GetUserIDFromToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecretKey, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || claims.ExpiresAt == nil {
		return "", models.ErrInvalidToken
	}

	return claims.UserID, nil
}

// AuthenticateUser is an HTTP middleware that reads the token from the
// Authorization header ("Bearer <jwt>" or the bare token) and, when it is
// valid, stores the user id in the request context. Requests without a
// valid token pass through unchanged; the operations decide what they need.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		tokenString := getTokenStringFromAuthorizationHeader(request)
		if tokenString == "" {
			h.ServeHTTP(response, request)
			return
		}

		userID, err := a.GetUserIDFromToken(tokenString)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.GetUserIDFromToken()`: ", zap.Error(err))
			h.ServeHTTP(response, request)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

func (a *Auth) respond(usr *user.User) (*models.AuthResponse, error) {
	token, err := a.IssueToken(usr.ID)
	if err != nil {
		return nil, fmt.Errorf("in internal/auth/auth.go/respond(): error while `a.IssueToken()` calling: %w", err)
	}

	return &models.AuthResponse{
		Token: token,
		User:  usr.Public(),
	}, nil
}

func getTokenStringFromAuthorizationHeader(request *http.Request) string {
	header := strings.TrimSpace(request.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return header
}
