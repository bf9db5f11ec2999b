package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/diagnosis/stayvista-server/internal/domain"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", fmt.Errorf("%w: price must be >= 0", domain.ErrInvalidInput), http.StatusBadRequest, CodeInvalidInput},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", fmt.Errorf("%w: not yours", domain.ErrForbidden), http.StatusUnauthorized, CodeForbidden},
		{"no principal", domain.ErrNoPrincipal, http.StatusUnauthorized, CodeForbidden},
		{"upstream", fmt.Errorf("%w: stripe", domain.ErrUpstream), http.StatusBadGateway, CodeUpstream},
		{"store", errors.New("pq: relation users does not exist"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(context.Background(), rec, tt.err)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, body.Code)
			}
			if strings.Contains(body.Error, "relation") {
				t.Fatal("store internals leaked")
			}
		})
	}
}

func TestWriteJSON_Null(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, nil)
	if strings.TrimSpace(rec.Body.String()) != "null" {
		t.Fatalf("expected null, got %q", rec.Body.String())
	}
}
