package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/api/middleware"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter returns a bare router that injects the given user the way the
// auth middleware would. A nil user leaves the route unauthenticated.
func newTestRouter(user *models.User) *gin.Engine {
	router := gin.New()
	if user != nil {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUser, user)
			c.Next()
		})
	}
	return router
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func testBuyer() *models.User {
	return &models.User{
		ID:            "buyer-uuid-1",
		Email:         "buyer@example.com",
		Role:          models.RoleBuyer,
		AccountStatus: models.AccountActive,
		FirstName:     "Bianca",
		LastName:      "Reid",
	}
}

func testAgent() *models.User {
	return &models.User{
		ID:            "agent-uuid-1",
		Email:         "agent@example.com",
		Role:          models.RoleAgent,
		AccountStatus: models.AccountActive,
		FirstName:     "Andre",
		LastName:      "Morgan",
	}
}

func testAdmin() *models.User {
	return &models.User{
		ID:            "admin-uuid-1",
		Email:         "admin@example.com",
		Role:          models.RoleAdmin,
		AccountStatus: models.AccountActive,
	}
}
