package server_response

import (
	"facevote.io/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

type ginResponder struct{}

// Respond writes the standard envelope: success, message, data when a payload
// is given and errors when validation produced any.
func (gr ginResponder) Respond(ctx interface{}, code int, success bool, message string, payload interface{}, errs []error) {
	ginCtx, ok := (ctx).(*gin.Context)
	if !ok {
		logger.Error("could not transform *interface{} to gin.Context in serverResponse package", logger.LoggerOptions{
			Key:  "payload",
			Data: ctx,
		})
		return
	}
	ginCtx.Abort()
	response := map[string]any{
		"success": success,
	}
	if message != "" {
		response["message"] = message
	}
	if payload != nil {
		response["data"] = payload
	}
	if errs != nil {
		errMsgs := []string{}
		for _, err := range errs {
			errMsgs = append(errMsgs, err.Error())
		}
		response["errors"] = errMsgs
	}
	ginCtx.JSON(code, response)
}
