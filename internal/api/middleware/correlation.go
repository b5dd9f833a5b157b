package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the caller-supplied request identifier.
	// The collector app forwards one per sync batch; a fresh ID is minted
	// when the header is absent.
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey is the gin context key the identifier is stored under
	CorrelationIDKey = "correlation_id"
)

// CorrelationID tags every request with an identifier so a dues submission or
// disbursement can be traced from the HTTP log through the outbox relay.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID returns the request's correlation ID, or the empty string
// outside the CorrelationID middleware
func GetCorrelationID(c *gin.Context) string {
	v, ok := c.Get(CorrelationIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
