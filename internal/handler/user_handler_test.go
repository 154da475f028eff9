package handler

import (
	"net/http"
	"testing"

	"automarket/chat/internal/models"
)

func TestRegisterLoginAndMe(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterInput{
		Name:     "Jane Seller",
		Email:    "Jane@Example.com",
		Password: "password123",
	})
	expectStatus(t, w, http.StatusCreated)
	registered := decode[TokenResponse](t, w)
	if registered.Token == "" {
		t.Fatalf("expected a token")
	}
	if registered.User.Email != "jane@example.com" || registered.User.Role != models.RoleMember || registered.User.Approved {
		t.Fatalf("unexpected account: %+v", registered.User)
	}

	w = env.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterInput{
		Name:     "Jane Again",
		Email:    "jane@example.com",
		Password: "password123",
	})
	expectStatus(t, w, http.StatusConflict)

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginInput{Email: "jane@example.com", Password: "wrong-password"})
	expectStatus(t, w, http.StatusUnauthorized)

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginInput{Email: "JANE@example.com", Password: "password123"})
	expectStatus(t, w, http.StatusOK)
	login := decode[TokenResponse](t, w)

	w = env.do(t, http.MethodGet, "/api/v1/users/me", login.Token, nil)
	expectStatus(t, w, http.StatusOK)
	if me := decode[UserResponse](t, w); me.ID != registered.User.ID {
		t.Fatalf("expected user %d, got %d", registered.User.ID, me.ID)
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", "{"},
		{"missing email", RegisterInput{Name: "Jane", Password: "password123"}},
		{"bad email", RegisterInput{Name: "Jane", Email: "not-an-email", Password: "password123"}},
		{"short password", RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "short"}},
		{"blank name", RegisterInput{Name: "   ", Email: "jane@example.com", Password: "password123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			expectStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	env := newTestEnv(t, nil)
	u := env.seedUser(t, "Gone Seller", models.RoleMember, true)
	if err := env.db.Model(&u).Update("active", false).Error; err != nil {
		t.Fatalf("failed to disable: %v", err)
	}

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginInput{Email: u.Email, Password: "password123"})
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestMe_RequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)

	expectStatus(t, env.do(t, http.MethodGet, "/api/v1/users/me", "", nil), http.StatusUnauthorized)
	expectStatus(t, env.do(t, http.MethodGet, "/api/v1/users/me", "garbage", nil), http.StatusUnauthorized)
}
