package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: reason required", model.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: other store", model.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: request", model.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: shipped -> pending", model.ErrIllegalTransition), http.StatusConflict},
		{fmt.Errorf("%w: sku", model.ErrConflict), http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}
