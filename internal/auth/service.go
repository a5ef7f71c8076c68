package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/fleetguard360/busbooking/internal/graphql"
	"github.com/fleetguard360/busbooking/internal/session"
)

type Executor interface {
	Execute(ctx context.Context, op graphql.Operation, variables map[string]any, sess *session.Session) (json.RawMessage, error)
}

// AuthError is a backend-rejected login or registration (bad credentials,
// duplicate username); the message is the backend's own.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Service issues the account operations and owns session acquisition.
type Service struct {
	exec  Executor
	store session.Store
}

func NewService(exec Executor, store session.Store) *Service {
	return &Service{exec: exec, store: store}
}

// Login authenticates the passenger and persists the acquired session.
func (s *Service) Login(ctx context.Context, username, password string) (session.Session, error) {
	variables := map[string]any{
		"username": username,
		"password": password,
	}
	data, err := s.exec.Execute(ctx, graphql.Login, variables, nil)
	if err != nil {
		return session.Session{}, err
	}

	var payload struct {
		Login struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Token   string `json:"token"`
		} `json:"login"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return session.Session{}, fmt.Errorf("decode login payload: %w", err)
	}

	if !payload.Login.Success || payload.Login.Token == "" {
		message := payload.Login.Message
		if message == "" {
			message = "invalid credentials"
		}
		return session.Session{}, &AuthError{Message: message}
	}

	sess := session.New(payload.Login.Token, username)
	if err := s.store.Save(ctx, sess); err != nil {
		log.Printf("auth: saving session for %s failed: %v", username, err)
	}
	return sess, nil
}

// Logout invalidates the stored session.
func (s *Service) Logout(ctx context.Context, username string) error {
	return s.store.Delete(ctx, username)
}

// Session returns the stored session for the user, if still valid.
func (s *Service) Session(ctx context.Context, username string) (session.Session, bool) {
	return s.store.Get(ctx, username)
}

// RegisterInput carries the registerPasajero variables. JSON tags follow
// the backend wire contract.
type RegisterInput struct {
	FirstName       string `json:"nombre"`
	LastName        string `json:"apellido"`
	Phone           string `json:"telefono"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (in RegisterInput) Validate() error {
	switch {
	case in.FirstName == "", in.LastName == "", in.Username == "", in.Email == "", in.Password == "":
		return errors.New("all registration fields are required")
	case in.Password != in.PasswordConfirm:
		return errors.New("passwords do not match")
	}
	return nil
}

// RegisteredPassenger is the backend's view of a freshly created account.
type RegisteredPassenger struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register creates a passenger account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisteredPassenger, error) {
	if err := in.Validate(); err != nil {
		return RegisteredPassenger{}, err
	}

	variables := map[string]any{
		"input": map[string]any{
			"nombre":          in.FirstName,
			"apellido":        in.LastName,
			"telefono":        in.Phone,
			"username":        in.Username,
			"email":           in.Email,
			"password":        in.Password,
			"passwordConfirm": in.PasswordConfirm,
		},
	}
	data, err := s.exec.Execute(ctx, graphql.RegisterPassenger, variables, nil)
	if err != nil {
		return RegisteredPassenger{}, err
	}

	var payload struct {
		Register struct {
			Success   bool                `json:"success"`
			Message   string              `json:"message"`
			Passenger RegisteredPassenger `json:"pasajero"`
		} `json:"registerPasajero"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return RegisteredPassenger{}, fmt.Errorf("decode registerPasajero payload: %w", err)
	}

	if !payload.Register.Success {
		message := payload.Register.Message
		if message == "" {
			message = "registration rejected"
		}
		return RegisteredPassenger{}, &AuthError{Message: message}
	}
	return payload.Register.Passenger, nil
}
