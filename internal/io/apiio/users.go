package apiio

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/oceandata/hydromon/internal/ent/store"
	"github.com/oceandata/hydromon/pkg/ent/model"
	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := s.store.UserByUsername(creds.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusUnauthorized,
				"Invalid username or password")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}

	err = bcrypt.CompareHashAndPassword(
		[]byte(u.PasswordHash), []byte(creds.Password),
	)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized,
			"Invalid username or password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Login successful",
		"id":       u.ID,
		"username": u.Username,
		"role":     u.Role,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeMessage(w, http.StatusBadRequest,
			"Username and password are required")
		return
	}
	if creds.Role == "" {
		creds.Role = "user"
	}

	u, err := s.newUser(creds)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}
	if u == nil {
		writeMessage(w, http.StatusConflict, "Username already exists")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Registration successful",
		"id":       u.ID,
		"username": u.Username,
		"role":     u.Role,
	})
}

// newUser creates a user with a hashed password. It returns nil without
// an error when the username is already taken.
func (s *Server) newUser(creds credentials) (*model.User, error) {
	_, err := s.store.UserByUsername(creds.Username)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword(
		[]byte(creds.Password), bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, err
	}

	u := model.User{
		Username:     creds.Username,
		PasswordHash: string(hash),
		Role:         creds.Role,
	}
	if err = s.store.CreateUser(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.Users()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	s.handleRegister(w, r)
}

func (s *Server) userFromPath(
	w http.ResponseWriter, r *http.Request,
) (*model.User, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user ID")
		return nil, false
	}

	u, err := s.store.UserByID(uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
		} else {
			writeMessage(w, http.StatusInternalServerError,
				"Database error")
		}
		return nil, false
	}
	return u, true
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.userFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username != nil && *req.Username != u.Username {
		other, err := s.store.UserByUsername(*req.Username)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusInternalServerError,
				"Database error")
			return
		}
		if err == nil && other.ID != u.ID {
			writeMessage(w, http.StatusConflict,
				"Username already exists")
			return
		}
		u.Username = *req.Username
	}

	if req.Role != nil && *req.Role != u.Role {
		if u.Role == "admin" {
			ok, err := s.otherAdminExists()
			if err != nil {
				writeMessage(w, http.StatusInternalServerError,
					"Database error")
				return
			}
			if !ok {
				writeMessage(w, http.StatusBadRequest,
					"Cannot demote the only admin account")
				return
			}
		}
		u.Role = *req.Role
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword(
			[]byte(*req.Password), bcrypt.DefaultCost,
		)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError,
				"Cannot hash password")
			return
		}
		u.PasswordHash = string(hash)
	}

	if err := s.store.UpdateUser(u); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User updated",
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	if u.Role == "admin" {
		ok, err := s.otherAdminExists()
		if err != nil {
			writeMessage(w, http.StatusInternalServerError,
				"Database error")
			return
		}
		if !ok {
			writeMessage(w, http.StatusBadRequest,
				"Cannot delete the only admin account")
			return
		}
	}

	if err := s.store.DeleteUser(u); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted",
	})
}

// otherAdminExists reports whether an admin account besides the one
// being changed remains. Callers only consult it for admin users, so a
// count above one means another admin exists.
func (s *Server) otherAdminExists() (bool, error) {
	count, err := s.store.AdminCount()
	if err != nil {
		return false, err
	}
	return count > 1, nil
}
