package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/university-admin-api/internal/service"
	"github.com/noah-isme/university-admin-api/pkg/config"
	"github.com/noah-isme/university-admin-api/pkg/i18n"
)

func newTestServer(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api", Metrics: config.MetricsConfig{Enabled: true}}
	metrics := service.NewMetricsService()
	handlers := buildHandlers(sqlx.NewDb(db, "sqlmock"), nil, metrics, zap.NewNop())
	return newRouter(cfg, zap.NewNop(), handlers, metrics), mock
}

func serve(r *gin.Engine, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterHealthAndMetrics(t *testing.T) {
	r, _ := newTestServer(t)

	for _, path := range []string{"/api/health", "/health"} {
		w := serve(r, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}

	w := serve(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = serve(r, http.MethodGet, "/docs/doc.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterListStudentsEndToEnd(t *testing.T) {
	r, mock := newTestServer(t)
	now := time.Now()
	mock.ExpectQuery("FROM students ORDER BY").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "age", "created_at", "updated_at"}).
			AddRow("6f1c2b1e-8d0a-4d7e-9a55-3f3f0e6a1b10", "Ana", "ana@u.edu", 20, now, now))
	mock.ExpectQuery(`WHERE e.student_id = ANY\(\$1::uuid\[\]\)`).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "id", "title", "code"}).
			AddRow("6f1c2b1e-8d0a-4d7e-9a55-3f3f0e6a1b10", "0e3c9b8a-1111-4a2b-8c3d-4e5f6a7b8c9d", "Algorithms", "CS401"))

	w := serve(r, http.MethodGet, "/api/students", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Ana", body[0]["name"])
	courses := body[0]["enrolledCourses"].([]interface{})
	require.Len(t, courses, 1)
	assert.Equal(t, "CS401", courses[0].(map[string]interface{})["code"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterMalformedIDIsLocalized(t *testing.T) {
	r, mock := newTestServer(t)

	w := serve(r, http.MethodGet, "/api/students/not-a-uuid", "", "Accept-Language", "sq")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "sq", w.Header().Get("Content-Language"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, i18n.Translate(i18n.LangAlbanian, i18n.InvalidID), body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterEnrollMissingIDs(t *testing.T) {
	r, mock := newTestServer(t)

	w := serve(r, http.MethodPost, "/api/enroll", `{"courseId":"0e3c9b8a-1111-4a2b-8c3d-4e5f6a7b8c9d"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"studentId"`)
	assert.Contains(t, w.Body.String(), "Invalid student or course id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterUnknownRoute(t *testing.T) {
	r, _ := newTestServer(t)
	w := serve(r, http.MethodGet, "/api/professors", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
