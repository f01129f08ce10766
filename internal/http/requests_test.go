package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark/internal/entities"
)

func newRequestsRouter(stores *testStores, user *entities.User) *gin.Engine {
	controller := NewRequestsController(stores.requests, stores.books, stores.audit)

	router := gin.New()
	router.Use(asUser(user))
	router.GET("/api/requests", controller.ListRequests)
	router.POST("/api/requests", controller.CreateRequest)
	router.PATCH("/api/requests/:id", controller.UpdateRequestStatus)
	router.DELETE("/api/requests/:id", controller.DeleteRequest)
	return router
}

func TestRequestsController_CreateRequest(t *testing.T) {
	t.Run("files a free-text request", func(t *testing.T) {
		stores, cleanup := setupTestStores(t)
		defer cleanup()
		user := createTestUser(t, stores, "student@example.com", entities.UserRoleStudent)

		w := doJSON(t, newRequestsRouter(stores, user), "POST", "/api/requests", map[string]any{
			"title":  "The Word for World Is Forest",
			"author": "Ursula K. Le Guin",
			"reason": "course reading",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "pending")
	})

	t.Run("files a catalog request by book id", func(t *testing.T) {
		stores, cleanup := setupTestStores(t)
		defer cleanup()
		user := createTestUser(t, stores, "student@example.com", entities.UserRoleStudent)
		book := createTestBook(t, stores, "In Catalog", 0)

		w := doJSON(t, newRequestsRouter(stores, user), "POST", "/api/requests", map[string]any{
			"book_id": book.ID,
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("rejects an empty request", func(t *testing.T) {
		stores, cleanup := setupTestStores(t)
		defer cleanup()
		user := createTestUser(t, stores, "student@example.com", entities.UserRoleStudent)

		w := doJSON(t, newRequestsRouter(stores, user), "POST", "/api/requests", map[string]any{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequestsController_ListRequests(t *testing.T) {
	stores, cleanup := setupTestStores(t)
	defer cleanup()
	student := createTestUser(t, stores, "student@example.com", entities.UserRoleStudent)
	other := createTestUser(t, stores, "other@example.com", entities.UserRoleStudent)
	admin := createTestUser(t, stores, "admin@example.com", entities.UserRoleAdmin)

	require.NoError(t, stores.requests.Create(&entities.Request{UserID: student.ID, Title: "Mine"}))
	require.NoError(t, stores.requests.Create(&entities.Request{UserID: other.ID, Title: "Theirs"}))

	// Students see only their own requests.
	w := doJSON(t, newRequestsRouter(stores, student), "GET", "/api/requests", nil)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])

	// Admins see everything.
	w = doJSON(t, newRequestsRouter(stores, admin), "GET", "/api/requests", nil)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])
}

func TestRequestsController_UpdateRequestStatus(t *testing.T) {
	stores, cleanup := setupTestStores(t)
	defer cleanup()
	student := createTestUser(t, stores, "student@example.com", entities.UserRoleStudent)
	admin := createTestUser(t, stores, "admin@example.com", entities.UserRoleAdmin)

	request := &entities.Request{UserID: student.ID, Title: "Approve Me"}
	require.NoError(t, stores.requests.Create(request))
	router := newRequestsRouter(stores, admin)

	w := doJSON(t, router, "PATCH", "/api/requests/"+request.ID, map[string]any{
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "approved")

	w = doJSON(t, router, "PATCH", "/api/requests/"+request.ID, map[string]any{
		"status": "on-fire",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestsController_DeleteRequest(t *testing.T) {
	t.Run("owner withdraws a pending request", func(t *testing.T) {
		stores, cleanup := setupTestStores(t)
		defer cleanup()
		student := createTestUser(t, stores, "student@example.com", entities.UserRoleStudent)
		request := &entities.Request{UserID: student.ID, Title: "Withdrawn"}
		require.NoError(t, stores.requests.Create(request))

		w := doJSON(t, newRequestsRouter(stores, student), "DELETE", "/api/requests/"+request.ID, nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("owner cannot withdraw after approval", func(t *testing.T) {
		stores, cleanup := setupTestStores(t)
		defer cleanup()
		student := createTestUser(t, stores, "student@example.com", entities.UserRoleStudent)
		request := &entities.Request{UserID: student.ID, Title: "Settled", Status: entities.RequestStatusApproved}
		require.NoError(t, stores.requests.Create(request))

		w := doJSON(t, newRequestsRouter(stores, student), "DELETE", "/api/requests/"+request.ID, nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("non-owner gets 403", func(t *testing.T) {
		stores, cleanup := setupTestStores(t)
		defer cleanup()
		owner := createTestUser(t, stores, "owner@example.com", entities.UserRoleStudent)
		intruder := createTestUser(t, stores, "intruder@example.com", entities.UserRoleStudent)
		request := &entities.Request{UserID: owner.ID, Title: "Protected"}
		require.NoError(t, stores.requests.Create(request))

		w := doJSON(t, newRequestsRouter(stores, intruder), "DELETE", "/api/requests/"+request.ID, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin deletes any request", func(t *testing.T) {
		stores, cleanup := setupTestStores(t)
		defer cleanup()
		student := createTestUser(t, stores, "student@example.com", entities.UserRoleStudent)
		admin := createTestUser(t, stores, "admin@example.com", entities.UserRoleAdmin)
		request := &entities.Request{UserID: student.ID, Title: "Admin Deleted", Status: entities.RequestStatusRejected}
		require.NoError(t, stores.requests.Create(request))

		w := doJSON(t, newRequestsRouter(stores, admin), "DELETE", "/api/requests/"+request.ID, nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
