package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys populated by the session and store middleware
const (
	SessionIDKey = "session_id"
	StoreIDKey   = "store_id"
)

// DefaultSessionHeader is the header carrying the shopper's session ID
const DefaultSessionHeader = "X-Session-ID"

// DefaultStoreHeader is the header carrying the storefront ID
const DefaultStoreHeader = "X-Store-ID"

// Session resolves the shopper's session from the request header. When the
// header is absent or not a valid UUID, a fresh session ID is minted. The
// resolved ID is always echoed back so clients can persist it.
func Session(headerName string) gin.HandlerFunc {
	if headerName == "" {
		headerName = DefaultSessionHeader
	}
	return func(c *gin.Context) {
		sessionID, err := uuid.Parse(c.GetHeader(headerName))
		if err != nil {
			sessionID = uuid.New()
		}
		c.Set(SessionIDKey, sessionID.String())
		c.Writer.Header().Set(headerName, sessionID.String())
		c.Next()
	}
}

// StoreResolver resolves the storefront a request targets. Requests without
// the header fall back to the default store; a malformed header is rejected.
func StoreResolver(headerName string, defaultStore uuid.UUID) gin.HandlerFunc {
	if headerName == "" {
		headerName = DefaultStoreHeader
	}
	return func(c *gin.Context) {
		raw := c.GetHeader(headerName)
		storeID := defaultStore
		if raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "ERR_INVALID_INPUT",
						"message": "Invalid store ID",
					},
				})
				return
			}
			storeID = parsed
		}
		c.Set(StoreIDKey, storeID.String())
		c.Next()
	}
}

// GetSessionID returns the session ID resolved by the Session middleware
func GetSessionID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(SessionIDKey))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// GetStoreID returns the store ID resolved by the StoreResolver middleware
func GetStoreID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(StoreIDKey))
	if err != nil {
		return uuid.Nil
	}
	return id
}
