package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performError(t *testing.T, err error) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	router := gin.New()
	base := &BaseHandler{}
	router.GET("/boom", func(c *gin.Context) {
		base.HandleError(c, err)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-123")
	router.ServeHTTP(w, req)

	var body dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestBaseHandler_HandleError(t *testing.T) {
	t.Run("not found maps to 404", func(t *testing.T) {
		w, body := performError(t, shared.NewDomainError("NOT_FOUND", "Customer not found"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, body.Success)
		assert.Equal(t, dto.ErrCodeNotFound, body.Error.Code)
		assert.Equal(t, "Customer not found", body.Error.Message)
		assert.Equal(t, "req-123", body.Error.RequestID)
	})

	t.Run("insufficient stock maps to 422", func(t *testing.T) {
		w, body := performError(t, shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough reams on hand"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInsufficientStock, body.Error.Code)
	})

	t.Run("closed period maps to 422", func(t *testing.T) {
		w, body := performError(t, shared.NewDomainError("PERIOD_CLOSED", "No open fiscal period covers this date"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodePeriodClosed, body.Error.Code)
	})

	t.Run("invalid state maps to 422", func(t *testing.T) {
		w, body := performError(t, shared.NewDomainError("INVALID_STATE", "Only draft orders can be confirmed"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, body.Error.Code)
	})

	t.Run("non-domain errors become an opaque 500", func(t *testing.T) {
		w, body := performError(t, errors.New("pq: connection reset"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeInternal, body.Error.Code)
		assert.NotContains(t, body.Error.Message, "pq:")
	})
}

func TestBaseHandler_Responses(t *testing.T) {
	t.Run("success wraps the payload", func(t *testing.T) {
		router := gin.New()
		base := &BaseHandler{}
		router.GET("/ok", func(c *gin.Context) {
			base.Success(c, gin.H{"name": "Acme Press"})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body dto.Response
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Nil(t, body.Error)
	})

	t.Run("paginated success carries meta", func(t *testing.T) {
		router := gin.New()
		base := &BaseHandler{}
		router.GET("/list", func(c *gin.Context) {
			base.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list", nil))

		var body dto.Response
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotNil(t, body.Meta)
		assert.Equal(t, int64(45), body.Meta.Total)
		assert.Equal(t, 2, body.Meta.Page)
		assert.Equal(t, 3, body.Meta.TotalPages)
	})

	t.Run("no content sends an empty 204", func(t *testing.T) {
		router := gin.New()
		base := &BaseHandler{}
		router.DELETE("/gone", func(c *gin.Context) {
			base.NoContent(c)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/gone", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults applied", 0, 0, 1, 20},
		{"values kept", 3, 50, 3, 50},
		{"oversized page clamped", 1, 500, 1, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, pageSize := normalizePage(tc.page, tc.size)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantPageSize, pageSize)
		})
	}
}
