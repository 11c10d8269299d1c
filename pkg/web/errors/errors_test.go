package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToStatus(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{CodeOK, http.StatusOK},
		{CodeInvalidParams, http.StatusBadRequest},
		{CodeUnAuthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{40101, http.StatusBadRequest},
		{CodeInternalError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CodeToStatus(tt.code), "code %d", tt.code)
	}
}
