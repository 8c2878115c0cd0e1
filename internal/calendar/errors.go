package calendar

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// ErrNotAuthorized means no usable tokens exist; callers map this to an
// "unauthenticated, needs login" response.
var ErrNotAuthorized = errors.New("authorization failed")

// ErrEventNotFound means the provider has no event with the given id.
var ErrEventNotFound = errors.New("event not found")

// mapAPIError converts provider errors into the gateway's sentinel errors
// where a taxonomy exists, and passes everything else through.
func mapAPIError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusGone:
			return ErrEventNotFound
		case http.StatusUnauthorized:
			return ErrNotAuthorized
		}
	}
	return err
}

// IsAuthError reports whether the error means the caller must log in
// again: missing tokens, a revoked grant, or a provider 401.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNotAuthorized) {
		return true
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "invalid_grant")
}
