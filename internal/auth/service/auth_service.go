// Package service implements the auth flows: register, login, and refresh.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-forge/backend/internal/db"
	"task-forge/backend/internal/security"
	sessiondomain "task-forge/backend/internal/session/domain"
	userdomain "task-forge/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrInvalidUserInput       = errors.New("invalid user input")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrNoRefreshToken         = errors.New("no refresh token")
	ErrInvalidTokenType       = errors.New("invalid token type")
	ErrInvalidRefreshToken    = errors.New("refresh token is expired or invalid")
)

const minPasswordLength = 6

// AuthResult holds the outcome of Register (access token + user), Login
// (both tokens + user), or Refresh (new access token only).
type AuthResult struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *userdomain.User
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByRefreshToken(ctx context.Context, refreshToken string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
}

// AuthService implements password register, login, and access-token refresh.
type AuthService struct {
	userRepo    UserRepo
	sessionRepo SessionRepo
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	now         func() time.Time // injectable for tests
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(userRepo UserRepo, sessionRepo SessionRepo, hasher *security.Hasher, tokens *security.TokenProvider) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokens:      tokens,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with the given email and password and issues an
// access token. No session row and no refresh token; the client logs in to
// obtain those.
func (s *AuthService) Register(ctx context.Context, email, password, bio string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	// Courtesy pre-check; the unique constraint on email is the authoritative
	// guard against a concurrent duplicate register.
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		Bio:          strings.TrimSpace(bio),
		CreatedAt:    s.now(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}
	access, accessExp, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, AccessExpiresAt: accessExp, User: user}, nil
}

// Login authenticates with email/password, issues an access and a refresh
// token, and persists a session row bound to the refresh token value.
// A missing user and a wrong password both return ErrInvalidCredentials so the
// response does not reveal which one failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	access, accessExp, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    refreshExp,
		CreatedAt:    s.now(),
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		User:             user,
	}, nil
}

// Refresh validates the refresh token and issues a new access token.
// The token must verify against the refresh secret, carry the REFRESH role,
// and match a non-expired session row; all three must hold. The refresh token
// itself is not rotated and the session row is untouched.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	claims := s.tokens.VerifyRefresh(refreshToken)
	if claims == nil {
		return nil, ErrInvalidTokenType
	}
	if claims.Role != security.RoleRefresh {
		return nil, ErrInvalidTokenType
	}
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	// The persisted expiry is checked independently of the token's embedded
	// expiry; both must be satisfied.
	if sess == nil || sess.Expired(s.now()) {
		return nil, ErrInvalidRefreshToken
	}
	access, accessExp, err := s.tokens.IssueAccess(claims.Subject)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, AccessExpiresAt: accessExp}, nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidUserInput)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrInvalidUserInput)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidUserInput, minPasswordLength)
	}
	return nil
}
