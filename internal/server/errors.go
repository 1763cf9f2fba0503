package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/services-gateway/internal/store"
)

// HTTPStatus returns the HTTP status code for an error raised while
// resolving or rendering a document. Only a missing document is a 404;
// malformed documents and unexpected failures are server errors.
func HTTPStatus(err error) int {
	var notFound *store.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
