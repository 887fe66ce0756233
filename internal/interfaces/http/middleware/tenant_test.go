package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTenantTestRouter(captured *gin.Context) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Tenant())
	handler := func(c *gin.Context) {
		*captured = *c
		c.Status(http.StatusOK)
	}
	r.GET("/invoices", handler)
	r.GET("/health", handler)
	return r
}

func TestTenantMiddleware(t *testing.T) {
	t.Run("extracts tenant, company and user from headers", func(t *testing.T) {
		var captured gin.Context
		r := newTenantTestRouter(&captured)

		tenantID := uuid.New()
		companyID := uuid.New()
		userID := uuid.New()

		req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
		req.Header.Set(TenantHeaderKey, tenantID.String())
		req.Header.Set(CompanyHeaderKey, companyID.String())
		req.Header.Set(UserHeaderKey, userID.String())

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		gotTenant, ok := GetTenantID(&captured)
		require.True(t, ok)
		assert.Equal(t, tenantID, gotTenant)

		gotCompany, ok := GetCompanyID(&captured)
		require.True(t, ok)
		assert.Equal(t, companyID, gotCompany)

		gotUser, ok := GetUserID(&captured)
		require.True(t, ok)
		assert.Equal(t, userID, gotUser)
	})

	t.Run("rejects requests without a tenant header", func(t *testing.T) {
		var captured gin.Context
		r := newTenantTestRouter(&captured)

		req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed company header", func(t *testing.T) {
		var captured gin.Context
		r := newTenantTestRouter(&captured)

		req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
		req.Header.Set(TenantHeaderKey, uuid.New().String())
		req.Header.Set(CompanyHeaderKey, "not-a-uuid")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("skips tenant requirement on health path", func(t *testing.T) {
		var captured gin.Context
		r := newTenantTestRouter(&captured)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("propagates incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Body.String())
		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	})

	t.Run("generates an id when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
	})
}
