package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aethra/atlas/internal/auth"
	"github.com/aethra/atlas/internal/database"
	"github.com/aethra/atlas/internal/models"
	"github.com/aethra/atlas/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
	stores *store.Stores
	db     *gorm.DB
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.RunMigrations(db))

	stores := store.New(db)
	jwtService := auth.NewJWTService("test-secret", time.Hour)

	hash, err := auth.HashPassword("swordfish")
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "admin@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)

	token, _, err := jwtService.GenerateToken(user.ID, user.Email)
	require.NoError(t, err)

	handler := NewHandler(db, jwtService)
	router := SetupRouter(
		handler,
		NewAuthHandler(db, jwtService),
		NewApplicationHandler(stores.Applications),
		NewAttributeHandler(stores.Attributes),
		NewOrganisationHandler(stores.Organisations),
		nil,
	)

	return &testServer{router: router, stores: stores, db: db, token: token}
}

func (ts *testServer) request(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
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
	if authed {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Name":            "name",
		"ParentID":        "parent_id",
		"AttributeIDs":    "attribute_ids",
		"OrganisationIDs": "organisation_ids",
		"DataType":        "data_type",
		"IsActive":        "is_active",
		"Email":           "email",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeCase(in), in)
	}
}

func TestHomeRedirectsToApplications(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/", nil, false)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/applications", w.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestAdminRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/admin/applications", gin.H{"name": "Portal"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.request(t, http.MethodGet, "/admin/applications", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndGetApplication(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/admin/applications", gin.H{
		"name":        "Portal",
		"description": "Customer portal",
		"properties":  gin.H{"environment": "production"},
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody(t, w)
	assert.Equal(t, "portal", created["slug"])

	id := created["id"].(string)

	// Lookup by id and by slug return the same record with tree info.
	for _, path := range []string{"/applications/" + id, "/applications/portal", "/applications/slug/portal"} {
		w = ts.request(t, http.MethodGet, path, nil, false)
		require.Equal(t, http.StatusOK, w.Code, path)
		body := decodeBody(t, w)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "Portal", data["name"])
		treeInfo := body["tree_info"].(map[string]interface{})
		assert.Equal(t, float64(0), treeInfo["level"])
		assert.Equal(t, "Portal", treeInfo["breadcrumb"])
	}
}

func TestCreateApplicationValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/admin/applications", gin.H{"description": "no name"}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body["error"])
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "name")
}

func TestGetApplicationNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/applications/"+uuid.NewString(), nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.request(t, http.MethodGet, "/applications/no-such-slug", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAndDeleteApplication(t *testing.T) {
	ts := newTestServer(t)

	app, err := ts.stores.Applications.Create(store.ApplicationCreateInput{Name: "Portal"})
	require.NoError(t, err)

	w := ts.request(t, http.MethodPut, "/admin/applications/"+app.ID.String(), gin.H{
		"description": "updated",
	}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "updated", decodeBody(t, w)["description"])

	w = ts.request(t, http.MethodDelete, "/admin/applications/"+app.ID.String(), nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, "/applications/"+app.ID.String(), nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReparentCycleRejectedOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	a, err := ts.stores.Applications.Create(store.ApplicationCreateInput{Name: "A"})
	require.NoError(t, err)
	b, err := ts.stores.Applications.Create(store.ApplicationCreateInput{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)

	w := ts.request(t, http.MethodPut, "/admin/applications/"+a.ID.String(), gin.H{
		"parent_id": b.ID.String(),
	}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeBody(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "parent_id")
}

func TestApplicationTreeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	root, err := ts.stores.Applications.Create(store.ApplicationCreateInput{Name: "Root"})
	require.NoError(t, err)
	_, err = ts.stores.Applications.Create(store.ApplicationCreateInput{Name: "Child", ParentID: &root.ID})
	require.NoError(t, err)

	w := ts.request(t, http.MethodGet, "/applications/tree", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "Root", first["name"])
}

func TestAttributeTypedValueResponse(t *testing.T) {
	ts := newTestServer(t)

	attr, err := ts.stores.Attributes.Create(store.AttributeCreateInput{
		Name:     "Tag 1",
		DataType: models.DataTypeBoolean,
		Value:    "true",
	})
	require.NoError(t, err)

	w := ts.request(t, http.MethodGet, "/attributes/"+attr.ID.String(), nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["typed_value"])
	assert.Equal(t, "checkbox", body["widget"])
}

func TestAttributeValueNormalization(t *testing.T) {
	ts := newTestServer(t)

	// A JSON boolean value is stored in its canonical text form.
	w := ts.request(t, http.MethodPost, "/admin/attributes", gin.H{
		"name":      "Enabled",
		"data_type": "boolean",
		"value":     true,
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", decodeBody(t, w)["value"])

	// A JSON number keeps its exact text form.
	w = ts.request(t, http.MethodPost, "/admin/attributes", gin.H{
		"name":      "Limit",
		"data_type": "integer",
		"value":     42,
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "42", decodeBody(t, w)["value"])

	// Including integers beyond float64's exact range.
	w = ts.request(t, http.MethodPost, "/admin/attributes", gin.H{
		"name":      "Big Limit",
		"data_type": "integer",
		"value":     int64(9007199254740993),
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "9007199254740993", decodeBody(t, w)["value"])
}

func TestAdminAttributeFilters(t *testing.T) {
	ts := newTestServer(t)

	_, err := ts.stores.Attributes.Create(store.AttributeCreateInput{Name: "Flag", DataType: models.DataTypeBoolean})
	require.NoError(t, err)
	_, err = ts.stores.Attributes.Create(store.AttributeCreateInput{Name: "Limit", DataType: models.DataTypeInteger})
	require.NoError(t, err)

	w := ts.request(t, http.MethodGet, "/admin/attributes?data_type=boolean", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["total"])

	w = ts.request(t, http.MethodGet, "/admin/attributes?created_before=not-a-date", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.request(t, http.MethodGet, "/admin/attributes?is_active=maybe", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrganisationOptionsIndentation(t *testing.T) {
	ts := newTestServer(t)

	company, err := ts.stores.Organisations.Create(store.OrganisationCreateInput{Name: "Company A"})
	require.NoError(t, err)
	_, err = ts.stores.Organisations.Create(store.OrganisationCreateInput{Name: "Subsidiary 1", ParentID: &company.ID})
	require.NoError(t, err)

	w := ts.request(t, http.MethodGet, "/admin/organisations/options", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "Company A", data[0].(map[string]interface{})["label"])
	assert.Equal(t, "— Subsidiary 1", data[1].(map[string]interface{})["label"])
}

func TestOrganisationEmailValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/admin/organisations", gin.H{
		"name":  "Company A",
		"email": "not-an-email",
	}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeBody(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "email")
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "swordfish",
	}, false)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "admin@example.com", user["email"])
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "wrong",
	}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
