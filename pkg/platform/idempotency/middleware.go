package idempotency

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	dErrors "givekindly/pkg/domain-errors"
	"givekindly/pkg/platform/httputil"
	"givekindly/pkg/platform/sentinel"
	"givekindly/pkg/requestcontext"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"

	maxKeyLength  = 255
	maxBodyLength = 64 << 10
)

// Middleware replays stored responses for POST requests carrying an
// Idempotency-Key. Keys are scoped to the authenticated caller, so it must
// run after the auth middleware. Server errors are not stored, letting the
// client retry them.
func Middleware(store Store, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(HeaderKey))
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)
			if len(key) > maxKeyLength {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Idempotency-Key is too long"))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyLength))
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			caller := requestcontext.ActorID(ctx).String()
			scoped := caller + ":" + key
			fingerprint := Fingerprint(r.Method, r.URL.Path, caller, body)

			stored, err := store.Get(ctx, scoped)
			switch {
			case err == nil:
				if stored.Fingerprint != fingerprint {
					logger.WarnContext(ctx, "idempotency key reused for a different request",
						"request_id", requestID,
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "Idempotency-Key was used for a different request"))
					return
				}
				replay(w, stored)
				return
			case !errors.Is(err, sentinel.ErrNotFound):
				logger.ErrorContext(ctx, "idempotency lookup failed",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "idempotency store unavailable"))
				return
			}

			var captured bytes.Buffer
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&captured)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				return
			}
			record := Record{
				Fingerprint: fingerprint,
				Status:      status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        captured.Bytes(),
				StoredAt:    requestcontext.Now(ctx),
			}
			if err := store.Put(ctx, scoped, record, ttl); err != nil {
				logger.ErrorContext(ctx, "failed to store idempotent response",
					"request_id", requestID,
					"error", err,
				)
			}
		})
	}
}

func replay(w http.ResponseWriter, record *Record) {
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(HeaderReplayed, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(record.Body)
}
