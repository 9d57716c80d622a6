package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/identity"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
)

func TestSignUp_CreatesProfileAndReturnsSession(t *testing.T) {
	identityClient := new(MockIdentityClient)
	userService := new(MockUserService)
	handler := NewRestAuthHandler(identityClient, userService)

	session := &identity.Session{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         identity.ProviderUser{ID: "provider-uuid-1", Email: "new@example.com"},
	}
	identityClient.On("SignUp", mock.Anything, "new@example.com", "secret-password").Return(session, nil)
	userService.On("CreateProfile", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == "provider-uuid-1" && u.Role == models.RoleBuyer && u.Name == "Nia Brown"
	})).Return(nil)

	router := newTestRouter(nil)
	router.POST("/auth/signup", handler.SignUp)

	recorder := performJSON(t, router, http.MethodPost, "/auth/signup", map[string]any{
		"email":      "new@example.com",
		"password":   "secret-password",
		"role":       "buyer",
		"first_name": "Nia",
		"last_name":  "Brown",
	})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Contains(t, body, "session")
	identityClient.AssertExpectations(t)
	userService.AssertExpectations(t)
}

func TestSignUp_PendingEmailConfirmation(t *testing.T) {
	identityClient := new(MockIdentityClient)
	userService := new(MockUserService)
	handler := NewRestAuthHandler(identityClient, userService)

	// No access token yet: the provider wants the email confirmed first.
	session := &identity.Session{User: identity.ProviderUser{ID: "provider-uuid-2"}}
	identityClient.On("SignUp", mock.Anything, mock.Anything, mock.Anything).Return(session, nil)
	userService.On("CreateProfile", mock.Anything, mock.Anything).Return(nil)

	router := newTestRouter(nil)
	router.POST("/auth/signup", handler.SignUp)

	recorder := performJSON(t, router, http.MethodPost, "/auth/signup", map[string]any{
		"email":    "pending@example.com",
		"password": "secret-password",
		"role":     "agent",
	})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["requires_confirmation"])
	assert.NotContains(t, body, "session")
}

func TestSignUp_RejectsAdminRole(t *testing.T) {
	handler := NewRestAuthHandler(new(MockIdentityClient), new(MockUserService))
	router := newTestRouter(nil)
	router.POST("/auth/signup", handler.SignUp)

	recorder := performJSON(t, router, http.MethodPost, "/auth/signup", map[string]any{
		"email":    "sneaky@example.com",
		"password": "secret-password",
		"role":     "admin",
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSignUp_RollsBackProviderAccountOnProfileFailure(t *testing.T) {
	identityClient := new(MockIdentityClient)
	userService := new(MockUserService)
	handler := NewRestAuthHandler(identityClient, userService)

	session := &identity.Session{
		AccessToken: "access-token",
		User:        identity.ProviderUser{ID: "provider-uuid-3"},
	}
	identityClient.On("SignUp", mock.Anything, mock.Anything, mock.Anything).Return(session, nil)
	userService.On("CreateProfile", mock.Anything, mock.Anything).Return(errors.New("insert failed"))
	identityClient.On("AdminDeleteUser", mock.Anything, "provider-uuid-3").Return(nil)

	router := newTestRouter(nil)
	router.POST("/auth/signup", handler.SignUp)

	recorder := performJSON(t, router, http.MethodPost, "/auth/signup", map[string]any{
		"email":    "rollback@example.com",
		"password": "secret-password",
		"role":     "buyer",
	})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	identityClient.AssertCalled(t, "AdminDeleteUser", mock.Anything, "provider-uuid-3")
}

func TestSignIn_ReturnsUserAndSession(t *testing.T) {
	identityClient := new(MockIdentityClient)
	userService := new(MockUserService)
	handler := NewRestAuthHandler(identityClient, userService)

	buyer := testBuyer()
	session := &identity.Session{
		AccessToken: "access-token",
		User:        identity.ProviderUser{ID: buyer.ID, Email: buyer.Email},
	}
	identityClient.On("SignInWithPassword", mock.Anything, buyer.Email, "secret-password").Return(session, nil)
	userService.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)

	router := newTestRouter(nil)
	router.POST("/auth/signin", handler.SignIn)

	recorder := performJSON(t, router, http.MethodPost, "/auth/signin", map[string]any{
		"email":    buyer.Email,
		"password": "secret-password",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Contains(t, body, "user")
	assert.Contains(t, body, "session")
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	identityClient := new(MockIdentityClient)
	handler := NewRestAuthHandler(identityClient, new(MockUserService))

	identityClient.On("SignInWithPassword", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, identity.ErrInvalidCredentials)

	router := newTestRouter(nil)
	router.POST("/auth/signin", handler.SignIn)

	recorder := performJSON(t, router, http.MethodPost, "/auth/signin", map[string]any{
		"email":    "nobody@example.com",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestSignIn_DeactivatedAccount(t *testing.T) {
	identityClient := new(MockIdentityClient)
	userService := new(MockUserService)
	handler := NewRestAuthHandler(identityClient, userService)

	buyer := testBuyer()
	buyer.AccountStatus = models.AccountInactive
	session := &identity.Session{
		AccessToken: "access-token",
		User:        identity.ProviderUser{ID: buyer.ID},
	}
	identityClient.On("SignInWithPassword", mock.Anything, mock.Anything, mock.Anything).Return(session, nil)
	userService.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)

	router := newTestRouter(nil)
	router.POST("/auth/signin", handler.SignIn)

	recorder := performJSON(t, router, http.MethodPost, "/auth/signin", map[string]any{
		"email":    buyer.Email,
		"password": "secret-password",
	})

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "Account is deactivated", body["error"])
}

func TestForgotPassword_UniformResponse(t *testing.T) {
	identityClient := new(MockIdentityClient)
	handler := NewRestAuthHandler(identityClient, new(MockUserService))

	// Provider failure must not leak whether the account exists.
	identityClient.On("Recover", mock.Anything, "nobody@example.com").Return(errors.New("user not found"))

	router := newTestRouter(nil)
	router.POST("/auth/forgot-password", handler.ForgotPassword)

	recorder := performJSON(t, router, http.MethodPost, "/auth/forgot-password", map[string]any{
		"email": "nobody@example.com",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "If an account exists for that email, a reset link has been sent", body["message"])
}

func TestRefresh_InvalidToken(t *testing.T) {
	identityClient := new(MockIdentityClient)
	handler := NewRestAuthHandler(identityClient, new(MockUserService))

	identityClient.On("Refresh", mock.Anything, "stale-token").Return(nil, identity.ErrInvalidCredentials)

	router := newTestRouter(nil)
	router.POST("/auth/refresh", handler.Refresh)

	recorder := performJSON(t, router, http.MethodPost, "/auth/refresh", map[string]any{
		"refresh_token": "stale-token",
	})

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestResetPassword_VerifiesRecoveryToken(t *testing.T) {
	identityClient := new(MockIdentityClient)
	handler := NewRestAuthHandler(identityClient, new(MockUserService))

	session := &identity.Session{AccessToken: "short-lived-token"}
	identityClient.On("Verify", mock.Anything, "recovery", "reset-token", "buyer@example.com").Return(session, nil)
	identityClient.On("UpdatePassword", mock.Anything, "short-lived-token", "new-password-1").Return(nil)

	router := newTestRouter(nil)
	router.POST("/auth/reset-password", handler.ResetPassword)

	recorder := performJSON(t, router, http.MethodPost, "/auth/reset-password", map[string]any{
		"token":        "reset-token",
		"email":        "buyer@example.com",
		"new_password": "new-password-1",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	identityClient.AssertExpectations(t)
}
