package storeio

import (
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/oceandata/hydromon/internal/ent/store"
	"github.com/oceandata/hydromon/pkg/ent/model"
)

// Default credentials of the bootstrap administrator account.
const (
	DefaultAdminName = "admin"
	defaultAdminPass = "admin123"
)

// EnsureDefaultAdmin creates the bootstrap administrator account when no
// admin exists yet. Without it a freshly built database would have no way
// to log in.
func EnsureDefaultAdmin(s store.Store) error {
	count, err := s.AdminCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = s.UserByUsername(DefaultAdminName)
	if err == nil {
		return errors.New("user admin exists but has no admin role")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword(
		[]byte(defaultAdminPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := model.User{
		Username:     DefaultAdminName,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err = s.CreateUser(&admin); err != nil {
		return err
	}
	slog.Info("Created default admin account", "username", DefaultAdminName)
	return nil
}
