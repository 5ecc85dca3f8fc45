// AngelaMos | 2026
// handler_test.go

package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/membership/internal/core"
	"github.com/carterperez-dev/membership/internal/email"
)

type recordingNotifier struct {
	got []email.ContactMessage
}

func (n *recordingNotifier) SendContact(_ context.Context, msg email.ContactMessage) {
	n.got = append(n.got, msg)
}

func submit(t *testing.T, n Notifier, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	NewHandler(n).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSubmit(t *testing.T) {
	n := &recordingNotifier{}

	rec := submit(t, n, `{"name":" Ana ","email":"Ana@Example.com","message":" hello there "}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp core.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, msgReceived, resp.Message)

	require.Len(t, n.got, 1)
	assert.Equal(t, email.ContactMessage{
		Name:    "Ana",
		Email:   "ana@example.com",
		Message: "hello there",
	}, n.got[0])
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"name":"Ana","email":"ana@example.com"}`},
		{"bad email", `{"name":"Ana","email":"ana","message":"hi"}`},
		{"blank name", `{"name":"   ","email":"ana@example.com","message":"hi"}`},
		{"message too long", `{"name":"Ana","email":"ana@example.com","message":"` +
			strings.Repeat("x", 5001) + `"}`},
		{"not json", `name=Ana`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			rec := submit(t, n, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, n.got)
		})
	}
}
