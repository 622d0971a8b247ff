package handler

import (
	"net/http"
	"strconv"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/auth"
	"github.com/arefin/memotube/internal/repository"
)

// listOptionsFromQuery reads the shared pagination/sort/search parameters.
// Non-numeric page/limit fall back to zero and get clamped downstream.
func listOptionsFromQuery(r *http.Request) repository.ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return repository.ListOptions{
		Page:   page,
		Limit:  limit,
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Search: q.Get("search"),
	}
}

// boolQuery parses an optional boolean query parameter; nil means absent.
func boolQuery(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.ValidationFailed(name, "must be true or false")
	}
	return &v, nil
}

// callerIdentity pulls the authenticated identity out of the context. Routes
// behind RequireAuth always have one; the error path covers misrouting.
func callerIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthenticated("authentication required"))
		return nil, false
	}
	return identity, true
}
