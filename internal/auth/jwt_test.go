package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate(Actor{ID: "op-7", Name: "Operaciones", Role: RoleOperator})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	actor, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if actor.ID != "op-7" || actor.Role != RoleOperator || actor.Name != "Operaciones" {
		t.Errorf("actor = %+v", actor)
	}
}

func TestJWTManager_DefaultRole(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, err := m.Generate(Actor{ID: "c1"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	actor, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if actor.Role != RoleMember {
		t.Errorf("role = %q, want member", actor.Role)
	}
}

func TestJWTManager_Invalid(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	other, err := NewJWTManager("other-secret", time.Hour).Generate(Actor{ID: "c1"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	expired := NewJWTManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Generate(Actor{ID: "c1"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: other},
		{name: "expired", token: stale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}

	if _, err := m.Generate(Actor{}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Generate() without id error = %v", err)
	}
}
