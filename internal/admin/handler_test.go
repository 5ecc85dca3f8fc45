// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/membership/internal/user"
)

type stubCounter struct {
	counts *user.Counts
	err    error
}

func (s stubCounter) Counts(context.Context) (*user.Counts, error) {
	return s.counts, s.err
}

func newTestRouter(cfg HandlerConfig) http.Handler {
	r := chi.NewRouter()
	NewHandler(cfg).RegisterRoutes(r)
	return r
}

func TestGetMemberStats(t *testing.T) {
	h := newTestRouter(HandlerConfig{
		Users: stubCounter{counts: &user.Counts{Total: 12, Verified: 9, Members: 4}},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/members", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats MemberStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, MemberStats{Users: 12, Verified: 9, Unverified: 3, Members: 4}, stats)
}

func TestGetMemberStats_Unavailable(t *testing.T) {
	h := newTestRouter(HandlerConfig{
		Users: stubCounter{err: errors.New("db down")},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/members", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetSystemStats(t *testing.T) {
	h := newTestRouter(HandlerConfig{
		DBStats: func() sql.DBStats {
			return sql.DBStats{MaxOpenConnections: 25, OpenConnections: 3, InUse: 1, Idle: 2}
		},
		RedisStats: func() *redis.PoolStats {
			return &redis.PoolStats{Hits: 10, TotalConns: 4, IdleConns: 3}
		},
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("redis down") },
		Users:     stubCounter{counts: &user.Counts{Total: 1}},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SystemStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Database.Healthy)
	assert.False(t, resp.Redis.Healthy)
	require.NotNil(t, resp.Database.Stats)
	assert.Equal(t, 25, resp.Database.Stats.MaxOpenConnections)
	require.NotNil(t, resp.Redis.Stats)
	assert.EqualValues(t, 10, resp.Redis.Stats.Hits)
	require.NotNil(t, resp.Members)
	assert.EqualValues(t, 1, resp.Members.Users)
	assert.NotEmpty(t, resp.Runtime.GoVersion)
}
