package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

// stubUploader satisfies service.ImageUploader without touching S3.
type stubUploader struct {
	calls int
}

func (u *stubUploader) UploadBase64(_ context.Context, _, folder string) (string, error) {
	u.calls++
	return fmt.Sprintf("https://example.com/media/%s/%d.png", folder, u.calls), nil
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	cfg := &config.Config{
		BaseURL:     "https://foodgram.example.com",
		PageSize:    6,
		MaxPageSize: 100,
	}

	uploader := &stubUploader{}
	auth := service.NewAuthService(db, nil, "test-secret")
	users := service.NewUserService(db, uploader)
	recipes := service.NewRecipeService(db, uploader)
	relations := service.NewRelationService(db)
	shoppingList := service.NewShoppingListService(db)
	tags := service.NewTagService(db)
	ingredients := service.NewIngredientService(db)

	r := router.SetupRouter(router.Handlers{
		Auth:        api.NewAuthHandler(auth),
		Users:       api.NewUserHandler(cfg, auth, users, recipes, relations),
		Recipes:     api.NewRecipeHandler(cfg, auth, recipes, relations, shoppingList),
		Tags:        api.NewTagHandler(tags),
		Ingredients: api.NewIngredientHandler(ingredients),
	}, nil)

	return &testEnv{router: r, db: db, auth: auth}
}

// tokenFor logs the fixture user in with the shared test password.
func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.auth.Login(context.Background(), user.Email, testhelpers.TestPassword)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out),
		"status %d, body %s", w.Code, w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
