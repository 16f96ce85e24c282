package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comanda/backend/internal/application/comanda"
	"github.com/comanda/backend/internal/domain/shared"
	"github.com/comanda/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"remote failure", &comanda.RemoteFailure{Op: "add item", Err: errors.New("reset by peer")}, http.StatusBadGateway, dto.ErrCodeRemoteFailure},
		{"wrapped remote failure", fmt.Errorf("reload: %w", &comanda.RemoteFailure{Op: "fetch", Err: io.ErrClosedPipe}), http.StatusBadGateway, dto.ErrCodeRemoteFailure},
		{"tab not found", comanda.ErrTabNotFound, http.StatusNotFound, "TAB_NOT_FOUND"},
		{"concurrency conflict", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"invalid state", shared.NewDomainError("INVALID_STATE", "closed"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"invalid prefix", shared.NewDomainError("INVALID_PRICE", "zero"), http.StatusBadRequest, "INVALID_PRICE"},
		{"syntax error", &json.SyntaxError{Offset: 3}, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"empty body", io.EOF, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			var h BaseHandler
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var h BaseHandler
	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
}
