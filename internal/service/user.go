package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"archivesys/internal/auth"
	"archivesys/internal/model"
	"archivesys/internal/repository"
)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// UserListResult is one page of users.
type UserListResult = ListResult[model.User]

// UserInput carries the editable fields of an account and its profile.
// An empty Password keeps the current one on update.
type UserInput struct {
	Username   string
	Email      string
	FirstName  string
	LastName   string
	Password   string
	IsStaff    bool
	IsActive   bool
	Position   string
	Department string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// UserService authenticates callers and administers accounts.
type UserService interface {
	// Login checks the credentials and issues a bearer token.
	Login(ctx context.Context, username, password string) (*LoginResult, error)

	// Authenticate validates a bearer token and reloads its user, rejecting inactive accounts.
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)

	Get(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, page int) (*UserListResult, error)
	Create(ctx context.Context, in UserInput) (*model.User, error)
	Update(ctx context.Context, id string, in UserInput) (*model.User, error)

	// Delete removes an account. Users cannot delete themselves.
	Delete(ctx context.Context, actor auth.Principal, id string) error

	// EnsureAdmin creates an active staff account when none exists under username.
	// Empty credentials are a no-op.
	EnsureAdmin(ctx context.Context, username, password, email string) error
}

type userService struct {
	users  repository.UserRepository
	signer *auth.Signer
	log    *logrus.Logger
	now    func() time.Time
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository, signer *auth.Signer, log *logrus.Logger) UserService {
	return &userService{users: users, signer: signer, log: log, now: time.Now}
}

func (s *userService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		s.log.WithFields(logrus.Fields{
			"component": "auth",
			"username":  u.Username,
		}).Warn("login_failed")
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	expires := s.now().Add(s.signer.TTL()).UTC()
	token, err := s.signer.GenerateToken(principalOf(u))
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"component": "auth",
		"user_id":   u.ID,
		"username":  u.Username,
	}).Info("login_succeeded")
	return &LoginResult{Token: token, ExpiresAt: expires, User: u}, nil
}

func (s *userService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	p, err := s.signer.ParseAndValidate(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	fresh := principalOf(u)
	return &fresh, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	return u, notFound(err)
}

func (s *userService) List(ctx context.Context, page int) (*UserListResult, error) {
	return paginate(page, UserPageSize, func(pq repository.PageQuery) (*repository.PageResult[model.User], error) {
		return s.users.List(ctx, pq)
	})
}

func (s *userService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	if err := validateUser(in, true); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{}
	applyUser(u, in)
	u.PasswordHash = hash

	created, err := s.users.Create(ctx, u)
	if err != nil {
		if isConflict(err) {
			return nil, &ValidationError{Fields: map[string]string{"username": "already taken"}}
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return created, nil
}

func (s *userService) Update(ctx context.Context, id string, in UserInput) (*model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateUser(in, false); err != nil {
		return nil, err
	}
	applyUser(u, in)
	u.PasswordHash = ""
	if in.Password != "" {
		if u.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		if isConflict(err) {
			return nil, &ValidationError{Fields: map[string]string{"username": "already taken"}}
		}
		return nil, fmt.Errorf("db update failed: %w", notFound(err))
	}
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if id == actor.UserID {
		return ErrForbidden
	}
	return notFound(s.users.Delete(ctx, id))
}

func (s *userService) EnsureAdmin(ctx context.Context, username, password, email string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("load admin: %w", err)
	}
	if _, err := s.Create(ctx, UserInput{
		Username: username,
		Email:    email,
		Password: password,
		IsStaff:  true,
		IsActive: true,
	}); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"component": "auth",
		"event":     "bootstrap_admin",
		"username":  username,
	}).Info("admin user created")
	return nil
}

func validateUser(in UserInput, create bool) error {
	fe := fieldErrors{}
	if !usernamePattern.MatchString(strings.TrimSpace(in.Username)) {
		fe.add("username", "letters, digits and @/./+/-/_ only, up to 150 characters")
	}
	switch {
	case create && in.Password == "":
		fe.add("password", "required")
	case in.Password != "" && len(in.Password) < minPasswordLength:
		fe.add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return fe.err()
}

func applyUser(u *model.User, in UserInput) {
	u.Username = strings.TrimSpace(in.Username)
	u.Email = strings.TrimSpace(in.Email)
	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.IsStaff = in.IsStaff
	u.IsActive = in.IsActive
	u.Profile = model.Profile{
		Position:   strings.TrimSpace(in.Position),
		Department: strings.TrimSpace(in.Department),
	}
}

func principalOf(u *model.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Username: u.Username, IsStaff: u.IsStaff}
}
