// Package auth provides authentication services
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/findosh/slideomni/internal/config"
	"github.com/findosh/slideomni/internal/logging"
	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/scrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already registered")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidToken       = errors.New("invalid token")
)

// scrypt parameters; the 64-byte key is stored hex encoded
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltBytes    = 16
)

// Demo account created when no initial admin is configured
const (
	demoUsername = "user"
	demoPassword = "password"
)

// Claims is the signed session payload
type Claims struct {
	Username    string             `json:"username"`
	Permissions models.Permissions `json:"permissions"`
	jwt.RegisteredClaims
}

// IsSudo reports whether the token snapshot grants elevated access
func (c *Claims) IsSudo() bool {
	return c != nil && c.Permissions.Sudo
}

// UserID returns the identity the token was issued to
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Service handles authentication operations
type Service struct {
	secret []byte
	ttl    time.Duration
	users  storage.Users
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new auth service
func NewService(cfg *config.Config, users storage.Users, logger *zap.Logger) *Service {
	return &Service{
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.SessionDuration,
		users:  users,
		logger: logging.OrNop(logger).Named("auth"),
		now:    time.Now,
	}
}

// RegisterInput contains registration data
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput contains login credentials
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult contains the result of a successful login or registration
type LoginResult struct {
	User    *models.User
	Token   string
	Expires time.Time
}

// Register creates a new account with a full allowance and signs it in
func (s *Service) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	user, err := s.createUser(ctx, input.Username, input.Email, input.Password, models.Permissions{})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("username", user.Username))
	return s.issue(user)
}

// Login verifies credentials and issues a session token
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, input.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := verifyPassword(input.Password, user.Salt, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// ValidateToken verifies signature and expiry and returns the embedded claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrSessionExpired
	}
	if err != nil || !token.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Me loads the current record of the token's user
func (s *Service) Me(ctx context.Context, claims *Claims) (*models.User, error) {
	return s.users.GetByUsername(ctx, claims.Username)
}

// Bootstrap creates the configured admin, or the demo account outside production.
// Existing accounts are left untouched.
func (s *Service) Bootstrap(ctx context.Context, admin config.InitAdmin, production bool) error {
	username, password, email := admin.Username, admin.Password, admin.Email
	perms := models.Permissions{Sudo: admin.Sudo}

	if !admin.Enabled() {
		if production {
			return nil
		}
		username, password, email = demoUsername, demoPassword, ""
		perms = models.Permissions{}
	}
	if email == "" {
		email = username + "@example.com"
	}

	user, err := s.createUser(ctx, username, email, password, perms)
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap user %q: %w", username, err)
	}

	s.logger.Info("bootstrap user created",
		zap.String("username", user.Username),
		zap.Bool("sudo", user.Permissions.Sudo),
	)
	return nil
}

func (s *Service) createUser(ctx context.Context, username, email, password string, perms models.Permissions) (*models.User, error) {
	salt, err := generateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := hashPassword(password, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(username, email, hash, salt, perms)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) issue(user *models.User) (*LoginResult, error) {
	token, expires, err := s.createToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}
	return &LoginResult{User: user, Token: token, Expires: expires}, nil
}

func (s *Service) createToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		Username:    user.Username,
		Permissions: user.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, expires, err
}

func generateSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashPassword(password, salt string) (string, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

func verifyPassword(password, salt, storedHash string) (bool, error) {
	want, err := hex.DecodeString(storedHash)
	if err != nil {
		return false, nil
	}
	got, err := hashPassword(password, salt)
	if err != nil {
		return false, err
	}
	gotBytes, _ := hex.DecodeString(got)
	return subtle.ConstantTimeCompare(gotBytes, want) == 1, nil
}
