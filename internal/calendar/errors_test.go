package calendar

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestMapAPIError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "404 becomes not found", in: &googleapi.Error{Code: 404}, want: ErrEventNotFound},
		{name: "410 becomes not found", in: &googleapi.Error{Code: 410}, want: ErrEventNotFound},
		{name: "401 becomes not authorized", in: &googleapi.Error{Code: 401}, want: ErrNotAuthorized},
		{name: "500 passes through", in: &googleapi.Error{Code: 500}},
		{name: "plain error passes through", in: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapAPIError(tt.in)
			if tt.want != nil {
				if !errors.Is(got, tt.want) {
					t.Errorf("mapAPIError() = %v, want %v", got, tt.want)
				}
				return
			}
			if !errors.Is(got, tt.in) {
				t.Errorf("mapAPIError() = %v, want original %v", got, tt.in)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want bool
	}{
		{name: "nil", in: nil, want: false},
		{name: "not authorized sentinel", in: ErrNotAuthorized, want: true},
		{name: "wrapped sentinel", in: fmt.Errorf("listing: %w", ErrNotAuthorized), want: true},
		{name: "token retrieve failure", in: &oauth2.RetrieveError{}, want: true},
		{name: "revoked grant", in: errors.New(`oauth2: "invalid_grant" "Token has been revoked"`), want: true},
		{name: "unrelated error", in: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.in); got != tt.want {
				t.Errorf("IsAuthError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
