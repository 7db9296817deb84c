package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Skotchmaster/product_hub/internal/events"
	"github.com/Skotchmaster/product_hub/internal/hash"
	"github.com/Skotchmaster/product_hub/internal/logging"
	"github.com/Skotchmaster/product_hub/internal/models"
	"github.com/Skotchmaster/product_hub/internal/repo"
	"github.com/Skotchmaster/product_hub/internal/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Service
	Events events.Publisher
	Now    func() time.Time
}

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
}

type ProfileInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Address     *string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) publish(ctx context.Context, ev events.Event) {
	if s.Events == nil {
		return
	}
	ev.OccurredAt = s.now()
	if err := s.Events.Publish(ctx, events.TopicUsers, strconv.FormatUint(uint64(ev.UserID), 10), ev); err != nil {
		logging.FromContext(ctx).Error("publish_error", "topic", events.TopicUsers, "type", ev.Type, "error", err)
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	user, err := s.createUser(ctx, in, false)
	if err != nil {
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict) {
			l.Warn("register_error", "status", 400, "reason", err.Error())
		} else {
			l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		}
		return nil, err
	}

	s.publish(ctx, events.Event{Type: events.UserRegistered, UserID: user.ID, Email: user.Email})
	l.Info("register_success", "user_id", user.ID)
	return user, nil
}

// CreateSuperuser provisions a staff account with the registration rules.
func (s *AuthService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	return s.createUser(ctx, RegisterInput{Email: email, Password: password}, true)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, superuser bool) (*models.User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, &FieldError{Message: "Email and password are required"}
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateProfile(in.FirstName, in.LastName, in.PhoneNumber); err != nil {
		return nil, err
	}

	exists, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token pair. Every rejection is
// ErrInvalidCredentials and costs one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = NormalizeEmail(email)
	if email == "" || password == "" {
		l.Warn("login_error", "status", 401, "reason", "missing credentials")
		return nil, tokens.Pair{}, ErrInvalidCredentials
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			l.Error("login_error", "status", 500, "reason", "cannot load user", "error", err)
			return nil, tokens.Pair{}, err
		}
		hash.DummyCheck(password)
		l.Warn("login_error", "status", 401, "reason", "unknown email")
		return nil, tokens.Pair{}, ErrInvalidCredentials
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_error", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, tokens.Pair{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		l.Warn("login_error", "status", 401, "reason", "user inactive", "user_id", user.ID)
		return nil, tokens.Pair{}, ErrInvalidCredentials
	}

	pair, err := s.Tokens.Issue(user.ID)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, tokens.Pair{}, err
	}

	if err := s.Repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		l.Error("last_login_error", "user_id", user.ID, "error", err)
	}

	s.publish(ctx, events.Event{Type: events.UserLoggedIn, UserID: user.ID})
	l.Info("login_success", "user_id", user.ID)
	return user, pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refresh string) (tokens.Token, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	access, err := s.Tokens.RotateAccess(ctx, refresh)
	if err != nil {
		if tokens.IsAuthError(err) {
			l.Warn("refresh_error", "status", 401, "reason", err.Error())
		} else {
			l.Error("refresh_error", "status", 500, "reason", "cannot check refresh token", "error", err)
		}
		return tokens.Token{}, err
	}
	l.Info("refresh_success")
	return access, nil
}

// Logout revokes the refresh token when it is still usable. Unusable tokens
// are not an error.
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if refresh == "" {
		return nil
	}

	userID, _, err := s.Tokens.ValidateRefresh(ctx, refresh)
	if err != nil {
		if tokens.IsAuthError(err) {
			return nil
		}
		return err
	}
	if err := s.Tokens.Revoke(ctx, refresh); err != nil {
		return err
	}

	s.publish(ctx, events.Event{Type: events.UserLoggedOut, UserID: userID})
	return nil
}

func (s *AuthService) Profile(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

func (s *AuthService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*models.User, error) {
	fields := map[string]any{}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.PhoneNumber != nil {
		fields["phone_number"] = *in.PhoneNumber
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}

	if err := validateProfile(deref(in.FirstName), deref(in.LastName), deref(in.PhoneNumber)); err != nil {
		return nil, err
	}

	user, err := s.Repo.UpdateProfile(ctx, id, fields)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

func validateProfile(first, last, phone string) error {
	if err := maxLen("first_name", first, maxNameLen); err != nil {
		return err
	}
	if err := maxLen("last_name", last, maxNameLen); err != nil {
		return err
	}
	return maxLen("phone_number", phone, maxPhoneLen)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
