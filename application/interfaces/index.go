package interfaces

import "context"

// ApplicationContext carries one request from the router into a controller.
// Ctx is the transport context (a *gin.Context for HTTP).
type ApplicationContext[T any] struct {
	Ctx       any
	Context   context.Context
	Body      *T
	Keys      map[string]any
	Header    map[string][]string
	RequestID string
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	values := ac.Header[key]
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}
