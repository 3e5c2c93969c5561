package service

import (
	"context"
	"regexp"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/pkg/cryptox"
	"github.com/aussiebroadwan/dds2/pkg/idx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
)

const minPasswordLen = 8

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// UserService manages login accounts. Every operation is staff only.
type UserService struct {
	Base
}

func (s *UserService) List(ctx context.Context, ident Identity) ([]domain.User, error) {
	if err := ident.RequireStaff(); err != nil {
		return nil, err
	}
	return s.Store.Users().ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, ident Identity, id string) (domain.User, error) {
	if err := ident.RequireStaff(); err != nil {
		return domain.User{}, err
	}
	u, err := s.Store.Users().GetUserByID(ctx, id)
	return u, mapStoreErr(err, "", "")
}

// Create adds a user. An empty password is replaced by a generated one,
// which is returned once.
func (s *UserService) Create(ctx context.Context, ident Identity, username, password string, staff bool) (domain.User, string, error) {
	if err := ident.RequireStaff(); err != nil {
		return domain.User{}, "", err
	}
	u, generated, err := newUser(username, password, staff, s.now())
	if err != nil {
		return domain.User{}, "", err
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, "", mapStoreErr(err, "username", "A user with that username already exists.")
	}
	slogx.FromContext(ctx).Info("user created", "new_user_id", u.ID, "staff", staff)
	return u, generated, nil
}

func (s *UserService) Delete(ctx context.Context, ident Identity, id string) error {
	if err := ident.RequireStaff(); err != nil {
		return err
	}
	if id == ident.UserID {
		return &ValidationError{Message: "You cannot delete your own user."}
	}
	return mapStoreErr(s.Store.Users().DeleteUser(ctx, id), "", "")
}

// newUser validates input and hashes the password. It returns the generated
// password when none was given.
func newUser(username, password string, staff bool, now time.Time) (domain.User, string, error) {
	var v validator
	v.length(username, 150, "username")
	if username != "" {
		v.check(usernamePattern.MatchString(username), "username",
			"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if password != "" {
		v.check(len(password) >= minPasswordLen, "password", "This password is too short.")
	}
	if err := v.err(); err != nil {
		return domain.User{}, "", err
	}

	var generated string
	if password == "" {
		p, err := cryptox.GeneratePassword()
		if err != nil {
			return domain.User{}, "", err
		}
		password, generated = p, p
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}
	return domain.User{
		ID:           idx.NewString(),
		Username:     username,
		PasswordHash: hash,
		IsStaff:      staff,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, generated, nil
}
