package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/pkg/utils/tokens"
)

// UserIDKey is the gin context key holding the authenticated uuid.UUID.
const UserIDKey = "user_id"

// TokenAuthenticator resolves a raw bearer token to a user id.
type TokenAuthenticator interface {
	Authenticate(raw string) (uuid.UUID, error)
}

// UserAuth authenticates requests with a user bearer token and sets the
// user id in the context. It also sets the user_id attribute on the current
// span for telemetry filtering.
func UserAuth(authn TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, authSpan := otel.Tracer("middleware").Start(c.Request.Context(), "user_auth",
			trace.WithAttributes(attribute.String("middleware", "user_auth")))
		defer authSpan.End()

		raw, ok := tokens.ParseBearer(c.GetHeader("Authorization"))
		if !ok {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("no token, authorization denied"))
			return
		}

		userID, err := authn.Authenticate(raw)
		if err != nil {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("token is not valid"))
			return
		}

		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.String("user_id", userID.String()))
		}
		authSpan.SetAttributes(
			attribute.String("user_id", userID.String()),
			attribute.Bool("authenticated", true),
		)

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the id set by UserAuth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
