// AngelaMos | 2026
// handler_test.go

package agecategory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/membership/internal/config"
)

func newTestRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()

	repo, mock := newTestRepo(t)
	r := chi.NewRouter()
	NewHandler(NewService(repo, config.AgeCategoryConfig{DefaultCap: 10})).RegisterRoutes(r)
	return r, mock
}

func TestHandlerIncrement(t *testing.T) {
	h, mock := newTestRouter(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO age_categories").
		WithArgs(30, 1, 10, false).
		WillReturnRows(categoryRows().AddRow(30, 10, 10, true, now, now))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/age-categories/30/increment", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 30, resp.Age)
	assert.True(t, resp.Unlocked)
}

func TestHandlerIncrement_RejectsBadAge(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, age := range []string{"0", "131", "-4", "abc"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/age-categories/"+age+"/increment", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, age)
	}
}

func TestHandlerList(t *testing.T) {
	h, mock := newTestRouter(t)

	now := time.Now()
	mock.ExpectQuery("FROM age_categories").
		WillReturnRows(categoryRows().AddRow(18, 1, 10, false, now, now))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/age-categories/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, 1)
	assert.Equal(t, 18, resp.Categories[0].Age)
}
