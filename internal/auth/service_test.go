package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fleetguard360/busbooking/internal/graphql"
	"github.com/fleetguard360/busbooking/internal/session"
)

type fakeExecutor struct {
	calls     int
	variables map[string]any
	data      json.RawMessage
	err       error
}

func (f *fakeExecutor) Execute(ctx context.Context, op graphql.Operation, variables map[string]any, sess *session.Session) (json.RawMessage, error) {
	f.calls++
	f.variables = variables
	return f.data, f.err
}

func TestLoginStoresSession(t *testing.T) {
	exec := &fakeExecutor{data: json.RawMessage(`{"login":{"success":true,"message":"ok","token":"tok-1"}}`)}
	store := session.NewMemoryStore()
	svc := NewService(exec, store)

	sess, err := svc.Login(context.Background(), "ana", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if sess.Token != "tok-1" || sess.Username != "ana" {
		t.Errorf("session = %+v, want token tok-1 for ana", sess)
	}
	if exec.variables["username"] != "ana" || exec.variables["password"] != "secret" {
		t.Errorf("login variables = %v", exec.variables)
	}

	stored, ok := store.Get(context.Background(), "ana")
	if !ok || stored.Token != "tok-1" {
		t.Errorf("stored session = %+v, %v; want persisted login", stored, ok)
	}
}

func TestLoginRejectedByBackend(t *testing.T) {
	exec := &fakeExecutor{data: json.RawMessage(`{"login":{"success":false,"message":"credenciales incorrectas"}}`)}
	svc := NewService(exec, session.NewMemoryStore())

	_, err := svc.Login(context.Background(), "ana", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want *AuthError", err)
	}
	if authErr.Message != "credenciales incorrectas" {
		t.Errorf("message = %q, want backend message", authErr.Message)
	}
}

func TestLoginPropagatesQueryError(t *testing.T) {
	exec := &fakeExecutor{err: &graphql.QueryError{Operation: "login", Message: "backend down"}}
	svc := NewService(exec, session.NewMemoryStore())

	_, err := svc.Login(context.Background(), "ana", "secret")
	var queryErr *graphql.QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error = %v, want *QueryError", err)
	}
}

func TestLogout(t *testing.T) {
	store := session.NewMemoryStore()
	svc := NewService(&fakeExecutor{}, store)

	store.Save(context.Background(), session.New("tok", "ana"))
	if err := svc.Logout(context.Background(), "ana"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, ok := svc.Session(context.Background(), "ana"); ok {
		t.Error("session survived logout")
	}
}

func TestRegisterValidation(t *testing.T) {
	exec := &fakeExecutor{}
	svc := NewService(exec, session.NewMemoryStore())

	in := RegisterInput{
		FirstName:       "Ana",
		LastName:        "Gómez",
		Username:        "anag",
		Email:           "ana@example.com",
		Password:        "secret",
		PasswordConfirm: "different",
	}
	if _, err := svc.Register(context.Background(), in); err == nil {
		t.Fatal("Register with mismatched passwords should fail")
	}
	if exec.calls != 0 {
		t.Errorf("executor called %d times, want 0", exec.calls)
	}
}

func TestRegisterSuccess(t *testing.T) {
	exec := &fakeExecutor{data: json.RawMessage(`{"registerPasajero":{"success":true,"message":"ok","pasajero":{"id":"9","username":"anag","email":"ana@example.com"}}}`)}
	svc := NewService(exec, session.NewMemoryStore())

	in := RegisterInput{
		FirstName:       "Ana",
		LastName:        "Gómez",
		Phone:           "3001234567",
		Username:        "anag",
		Email:           "ana@example.com",
		Password:        "secret",
		PasswordConfirm: "secret",
	}
	passenger, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if passenger.ID != "9" || passenger.Username != "anag" {
		t.Errorf("passenger = %+v", passenger)
	}

	input, ok := exec.variables["input"].(map[string]any)
	if !ok {
		t.Fatalf("variables missing input object: %v", exec.variables)
	}
	if input["telefono"] != "3001234567" || input["passwordConfirm"] != "secret" {
		t.Errorf("register input = %v", input)
	}
}
