package handler

import (
	"errors"
	"net/http"

	"redraft/internal/domain"
	"redraft/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Anything that does
// not implement domain.HTTPError is a bug surfaced as a bare 500.
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}
	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}
