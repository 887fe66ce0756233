package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/invoicing/backend/internal/interfaces/http/dto"
)

// Context keys and headers for the caller's identity scope
const (
	TenantIDKey  = "tenant_id"
	CompanyIDKey = "company_id"
	UserIDKey    = "user_id"

	TenantHeaderKey  = "X-Tenant-ID"
	CompanyHeaderKey = "X-Company-ID"
	UserHeaderKey    = "X-User-ID"
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// SkipPaths are paths served without a tenant scope (e.g. health check)
	SkipPaths []string
}

// DefaultTenantConfig returns the default tenant middleware configuration
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready"},
	}
}

// Tenant extracts the tenant, company and user scope from request headers.
// The tenant header is mandatory; company and user are optional and only
// validated when present. A gateway in front of this service is expected to
// authenticate the caller and stamp these headers.
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// TenantWithConfig returns the tenant middleware with custom configuration
func TenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		tenantID, err := uuid.Parse(c.GetHeader(TenantHeaderKey))
		if err != nil || tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest,
				"A valid X-Tenant-ID header is required",
				GetRequestID(c),
			))
			return
		}
		c.Set(TenantIDKey, tenantID)

		if raw := c.GetHeader(CompanyHeaderKey); raw != "" {
			companyID, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
					dto.ErrCodeBadRequest,
					"X-Company-ID header is not a valid UUID",
					GetRequestID(c),
				))
				return
			}
			c.Set(CompanyIDKey, companyID)
		}

		if raw := c.GetHeader(UserHeaderKey); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
					dto.ErrCodeBadRequest,
					"X-User-ID header is not a valid UUID",
					GetRequestID(c),
				))
				return
			}
			c.Set(UserIDKey, userID)
		}

		c.Next()
	}
}

// GetTenantID returns the tenant scope set by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, TenantIDKey)
}

// GetCompanyID returns the company scope set by the Tenant middleware
func GetCompanyID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, CompanyIDKey)
}

// GetUserID returns the acting user set by the Tenant middleware
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, UserIDKey)
}

func getUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	value, ok := c.Get(key)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
