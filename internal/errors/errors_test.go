package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCatalogError_Unwrap(t *testing.T) {
	t.Parallel()

	wrapped := NewCatalogError("https://api.example.com/api/courses", 503, ErrCatalogUnavailable)

	if !errors.Is(wrapped, ErrCatalogUnavailable) {
		t.Error("errors.Is should match the wrapped sentinel")
	}

	var catErr *CatalogError
	if !errors.As(wrapped, &catErr) {
		t.Fatal("errors.As should extract *CatalogError")
	}
	if catErr.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", catErr.StatusCode)
	}
}

func TestCatalogError_Message(t *testing.T) {
	t.Parallel()

	withStatus := NewCatalogError("/api/courses", 502, errors.New("bad gateway"))
	if got := withStatus.Error(); got != "catalog request to /api/courses failed with status 502: bad gateway" {
		t.Errorf("unexpected message: %q", got)
	}

	noStatus := NewCatalogError("/api/courses", 0, errors.New("connection refused"))
	if got := noStatus.Error(); got != "catalog request to /api/courses failed: connection refused" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestCatalogError_ThroughWrapping(t *testing.T) {
	t.Parallel()

	base := NewCatalogError("/api/modules/42", 404, ErrNotFound)
	wrapped := fmt.Errorf("resolve category: %w", base)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("sentinel should survive an extra %w layer")
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("message", "must not be empty")
	if err.Error() != "validation failed on message: must not be empty" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
