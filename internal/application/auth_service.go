package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
	"github.com/oksasatya/devconnector-api/pkg/apperr"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
	"github.com/oksasatya/devconnector-api/pkg/mailer"
	"github.com/oksasatya/devconnector-api/pkg/mailer/templates"
)

const msgInvalidCredentials = "Invalid credentials"

// PasswordHasher is the one-way credential hash used at registration and login.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// TokenIssuer signs access tokens for a user identity.
type TokenIssuer interface {
	GenerateAccessToken(userID string) (string, time.Time, error)
}

// AuthService registers users and exchanges credentials for access tokens.
type AuthService struct {
	Common
	Users   repository.UserRepository
	Hasher  PasswordHasher
	Tokens  TokenIssuer
	Mail    JobPublisher
	AppName string
}

func NewAuthService(c Common, users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, mail JobPublisher, appName string) *AuthService {
	return &AuthService{Common: c, Users: users, Hasher: hasher, Tokens: tokens, Mail: mail, AppName: appName}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AccessToken is a signed credential and the moment it stops being accepted.
type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a gravatar avatar and returns a token for it.
// A taken email is a Conflict, including when two registrations race.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AccessToken, error) {
	email := normalizeEmail(in.Email)

	err := s.call(ctx, func(ctx context.Context) error {
		_, err := s.Users.GetByEmail(ctx, email)
		return err
	})
	switch {
	case err == nil:
		return AccessToken{}, apperr.Conflict("User already exists")
	case !errors.Is(err, repository.ErrNotFound):
		return AccessToken{}, storeFailure(err, "")
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return AccessToken{}, apperr.Wrap(apperr.KindInternal, "server error", err)
	}
	u := &entity.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Password:  hash,
		AvatarURL: helpers.GravatarURL(email),
	}
	err = s.call(ctx, func(ctx context.Context) error { return s.Users.Create(ctx, u) })
	if errors.Is(err, repository.ErrDuplicate) {
		return AccessToken{}, apperr.Conflict("User already exists")
	}
	if err != nil {
		return AccessToken{}, storeFailure(err, "")
	}
	metrics.Add(metricRegistrations, 1)

	tok, err := s.issue(u.ID)
	if err != nil {
		return AccessToken{}, err
	}

	enqueueEmail(ctx, s.Common, s.Mail, mailer.EmailJob{
		To:       u.Email,
		Template: templates.Welcome,
		Data:     templates.EmailData{AppName: s.AppName, Name: u.Name, Email: u.Email, Time: u.CreatedAt},
	})
	return tok, nil
}

// Login verifies the password. Unknown email and wrong password are reported identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (AccessToken, error) {
	var u *entity.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.Users.GetByEmail(ctx, normalizeEmail(email))
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return AccessToken{}, apperr.Unauthenticated(msgInvalidCredentials)
	}
	if err != nil {
		return AccessToken{}, storeFailure(err, "")
	}
	if !s.Hasher.Compare(u.Password, password) {
		return AccessToken{}, apperr.Unauthenticated(msgInvalidCredentials)
	}
	metrics.Add(metricLogins, 1)
	return s.issue(u.ID)
}

// CurrentUser loads the user a verified token points at.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	var u *entity.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.Users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, storeFailure(err, "User not found")
	}
	return u, nil
}

func (s *AuthService) issue(userID string) (AccessToken, error) {
	token, exp, err := s.Tokens.GenerateAccessToken(userID)
	if err != nil {
		s.logger().WithError(err).WithField("user_id", userID).Error("generate access token failed")
		return AccessToken{}, apperr.Wrap(apperr.KindInternal, "server error", err)
	}
	return AccessToken{Token: token, ExpiresAt: exp}, nil
}
