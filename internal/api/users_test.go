package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/users",
		`{"email":"new@example.com","username":"newbie","first_name":"New","last_name":"User","password":"secret-pass"}`, "")
	requireStatus(t, w, http.StatusCreated)

	var resp struct {
		ID       uint   `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	decodeJSON(t, w, &resp)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "newbie", resp.Username)

	// Duplicate email is a field-scoped 400.
	w = env.request(t, http.MethodPost, "/api/users",
		`{"email":"new@example.com","username":"other","first_name":"Other","last_name":"User","password":"secret-pass"}`, "")
	requireStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "email")
}

func TestUserListPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 8; i++ {
		testhelpers.CreateTestUser(t, env.db, fmt.Sprintf("user%d", i))
	}

	w := env.request(t, http.MethodGet, "/api/users?limit=5", "", "")
	requireStatus(t, w, http.StatusOK)

	var page struct {
		Count    int64             `json:"count"`
		Next     *string           `json:"next"`
		Previous *string           `json:"previous"`
		Results  []json.RawMessage `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.EqualValues(t, 8, page.Count)
	assert.Len(t, page.Results, 5)
	require.NotNil(t, page.Next)
	assert.Nil(t, page.Previous)
}

func TestGetUserAnonymous(t *testing.T) {
	env := newTestEnv(t)
	user := testhelpers.CreateTestUser(t, env.db, "alice")

	w := env.request(t, http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), "", "")
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		Username     string  `json:"username"`
		IsSubscribed bool    `json:"is_subscribed"`
		Avatar       *string `json:"avatar"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "alice", resp.Username)
	assert.False(t, resp.IsSubscribed)
	assert.Nil(t, resp.Avatar)

	w = env.request(t, http.MethodGet, "/api/users/999", "", "")
	requireStatus(t, w, http.StatusNotFound)
}

func TestMeRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/users/me", "", "")
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestSetPasswordEndpoint(t *testing.T) {
	env := newTestEnv(t)
	user := testhelpers.CreateTestUser(t, env.db, "alice")
	token := env.tokenFor(t, user)

	w := env.request(t, http.MethodPost, "/api/users/set_password",
		`{"current_password":"`+testhelpers.TestPassword+`","new_password":"brand-new-pass"}`, token)
	requireStatus(t, w, http.StatusNoContent)

	// Old password no longer works.
	w = env.request(t, http.MethodPost, "/api/auth/token/login",
		`{"email":"alice@example.com","password":"`+testhelpers.TestPassword+`"}`, "")
	requireStatus(t, w, http.StatusUnauthorized)

	w = env.request(t, http.MethodPost, "/api/auth/token/login",
		`{"email":"alice@example.com","password":"brand-new-pass"}`, "")
	requireStatus(t, w, http.StatusOK)
}

func TestSubscribeFlow(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.db, "author")
	reader := testhelpers.CreateTestUser(t, env.db, "reader")
	tag := testhelpers.CreateTestTag(t, env.db, "dinner")
	egg := testhelpers.CreateTestIngredient(t, env.db, "egg", "pcs")
	testhelpers.CreateTestRecipe(t, env.db, author, "omelette", []*models.Tag{tag}, map[*models.Ingredient]int{egg: 2})
	token := env.tokenFor(t, reader)

	w := env.request(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", author.ID), "", token)
	requireStatus(t, w, http.StatusCreated)

	var resp struct {
		Username     string `json:"username"`
		IsSubscribed bool   `json:"is_subscribed"`
		Recipes      []struct {
			Name string `json:"name"`
		} `json:"recipes"`
		RecipesCount int64 `json:"recipes_count"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "author", resp.Username)
	assert.True(t, resp.IsSubscribed)
	require.Len(t, resp.Recipes, 1)
	assert.EqualValues(t, 1, resp.RecipesCount)

	// Second subscribe is a 400.
	w = env.request(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", author.ID), "", token)
	requireStatus(t, w, http.StatusBadRequest)

	// Self-subscription is a 400.
	w = env.request(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", reader.ID), "", token)
	requireStatus(t, w, http.StatusBadRequest)

	// Subscriptions listing includes the author.
	w = env.request(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=1", "", token)
	requireStatus(t, w, http.StatusOK)
	var page struct {
		Count   int64 `json:"count"`
		Results []struct {
			Username string `json:"username"`
		} `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "author", page.Results[0].Username)

	// Unsubscribe, then a repeat is a 400.
	w = env.request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", author.ID), "", token)
	requireStatus(t, w, http.StatusNoContent)
	w = env.request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", author.ID), "", token)
	requireStatus(t, w, http.StatusBadRequest)

	// Unsubscribing from a user that does not exist is a 404, not a 400.
	w = env.request(t, http.MethodDelete, "/api/users/999/subscribe", "", token)
	requireStatus(t, w, http.StatusNotFound)
}

func TestAvatarEndpoints(t *testing.T) {
	env := newTestEnv(t)
	user := testhelpers.CreateTestUser(t, env.db, "alice")
	token := env.tokenFor(t, user)

	w := env.request(t, http.MethodPut, "/api/users/me/avatar", `{"avatar":"payload"}`, token)
	requireStatus(t, w, http.StatusOK)
	var resp struct {
		Avatar string `json:"avatar"`
	}
	decodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp.Avatar)

	w = env.request(t, http.MethodDelete, "/api/users/me/avatar", "", token)
	requireStatus(t, w, http.StatusNoContent)

	// Only the "me" form of the avatar route exists.
	w = env.request(t, http.MethodPut, fmt.Sprintf("/api/users/%d/avatar", user.ID), `{"avatar":"payload"}`, token)
	requireStatus(t, w, http.StatusNotFound)
}
