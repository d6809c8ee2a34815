package server_response

type responder interface {
	Respond(ctx interface{}, code int, success bool, message string, payload interface{}, errs []error)
}

var Responder responder = ginResponder{}
