package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidationError(t *testing.T) {
	type item struct {
		Name     string `json:"name" binding:"required"`
		Quantity int    `json:"quantity" binding:"gt=0"`
	}
	type body struct {
		OrderID  string `json:"order_id" binding:"required"`
		Currency string `json:"currency" binding:"required,len=3"`
		Items    []item `json:"items" binding:"required,min=1,dive"`
	}

	SetupValidator()

	r := gin.New()
	r.Use(RequestID())
	r.POST("/test", func(c *gin.Context) {
		var req body
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	post := func(payload string) (*httptest.ResponseRecorder, dto.Response) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		var resp dto.Response
		if w.Code != http.StatusOK {
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		}
		return w, resp
	}

	t.Run("field violations use JSON names", func(t *testing.T) {
		w, resp := post(`{"currency":"PESO","items":[{"name":"","quantity":0}]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", fields["order_id"])
		assert.Equal(t, "Must be exactly 3 characters", fields["currency"])
		assert.Equal(t, "This field is required", fields["items[0].name"])
		assert.Equal(t, "Must be greater than 0", fields["items[0].quantity"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		w, resp := post(`{"order_id":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})

	t.Run("valid body", func(t *testing.T) {
		w, _ := post(`{"order_id":"A1","currency":"MXN","items":[{"name":"Taco","quantity":2}]}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
