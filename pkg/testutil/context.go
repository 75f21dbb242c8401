package testutil

import (
	"net/http"

	"givekindly/pkg/domain"
	"givekindly/pkg/requestcontext"
)

// WithActor binds a caller to the request context, as the auth middleware would.
func WithActor(req *http.Request, actorID domain.ActorID) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), actorID))
}
