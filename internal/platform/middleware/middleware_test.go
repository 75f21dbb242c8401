package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givekindly/pkg/domain"
	"givekindly/pkg/requestcontext"
)

type stubValidator struct {
	claims *ActorClaims
	err    error
}

func (s stubValidator) ValidateActor(string) (*ActorClaims, error) {
	return s.claims, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth(t *testing.T) {
	actor := domain.NewActorID()

	tests := []struct {
		name       string
		header     string
		validator  stubValidator
		wantStatus int
		wantActor  domain.ActorID
	}{
		{"missing header", "", stubValidator{}, http.StatusUnauthorized, domain.ActorID{}},
		{"not a bearer token", "Basic abc", stubValidator{}, http.StatusUnauthorized, domain.ActorID{}},
		{"invalid token", "Bearer bad", stubValidator{err: errors.New("nope")}, http.StatusUnauthorized, domain.ActorID{}},
		{"valid token", "Bearer good", stubValidator{claims: &ActorClaims{ActorID: actor}}, http.StatusOK, actor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen domain.ActorID
			h := RequireAuth(tt.validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = requestcontext.ActorID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			r := httptest.NewRequest(http.MethodPost, "/auction/bids", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantActor, seen)
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Run("propagates incoming id", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))
		r := httptest.NewRequest(http.MethodGet, "/stats", nil)
		r.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("mints id when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
		require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	})
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
