package middlewares

import (
	"facevote.io/application/interfaces"
	"facevote.io/application/services/recognition"
	"facevote.io/application/utils"
	"facevote.io/infrastructure/validator"
	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-Id"

// RequestContextMiddleware tags every request with an id (the caller's, when
// it sends a well-formed one) and stores the AppContext routes build on.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 || validator.ValidatorInstance.ValidateValue(requestID, "identity_id") != nil {
			requestID = utils.GenerateUULDString()
		}
		ctx.Set("RequestID", requestID)
		ctx.Header(RequestIDHeader, requestID)

		ctx.Set("AppContext", &interfaces.ApplicationContext[any]{
			Ctx:       ctx,
			Context:   recognition.WithRequestID(ctx.Request.Context(), requestID),
			Keys:      ctx.Keys,
			Header:    ctx.Request.Header,
			RequestID: requestID,
		})
		ctx.Next()
	}
}
