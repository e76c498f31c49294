package delivery

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", fmt.Errorf("%w: All fields are required.", domain.ErrValidation), http.StatusBadRequest, "All fields are required."},
		{"wrapped validation", fmt.Errorf("failed: %w", fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)), http.StatusBadRequest, "title cannot be empty"},
		{"invalid status", fmt.Errorf("%w: %q", domain.ErrInvalidStatus, "lost"), http.StatusBadRequest, "Invalid status"},
		{"strict pricing", fmt.Errorf("%w: id 7", domain.ErrProductNotFound), http.StatusBadRequest, "Product not found: id 7"},
		{"unauthorized", fmt.Errorf("%w: invalid password", domain.ErrUnauthorized), http.StatusUnauthorized, "Unauthorized"},
		{"not found", fmt.Errorf("%w: order with id 3", domain.ErrNotFound), http.StatusNotFound, "Order not found"},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, "Slow down, too many requests."},
		{"storage details stay server side", fmt.Errorf("%w: insert order: disk I/O error", domain.ErrStorage), http.StatusInternalServerError, "Internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := mapErrorToStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, clientMessage(tt.err, status, "Order"))
		})
	}
}
