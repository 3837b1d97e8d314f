// Package code defines the service's result codes.
package code

import (
	"fmt"
	"net/http"
)

// Code is a registered result code with an attached message. Error codes
// carry status=false, success codes status=true.
type Code struct {
	code    int
	status  bool
	msg     string
	data    interface{}
	details []string
}

var codes = map[int]string{}

// NewError registers an error code. Duplicate registration is a programming
// mistake and panics at init time.
func NewError(code int, msg string) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("code %d already registered", code))
	}
	codes[code] = msg
	return &Code{code: code, status: false, msg: msg}
}

// NewSuss registers a success code.
func NewSuss(code int, msg string) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("code %d already registered", code))
	}
	codes[code] = msg
	return &Code{code: code, status: true, msg: msg}
}

func (e *Code) Error() string {
	return e.msg
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.msg
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) Details() []string {
	return e.details
}

// WithData returns a copy carrying response data.
func (e *Code) WithData(data interface{}) *Code {
	c := *e
	c.data = data
	return &c
}

// WithDetails returns a copy carrying extra detail lines.
func (e *Code) WithDetails(details ...string) *Code {
	c := *e
	c.details = append([]string{}, details...)
	return &c
}

// StatusCode maps the result code onto an HTTP status.
func (e *Code) StatusCode() int {
	switch e.code {
	case Success.code:
		return http.StatusOK
	case ErrorInvalidParams.code:
		return http.StatusBadRequest
	case ErrorNotFound.code:
		return http.StatusNotFound
	case ErrorTooManyRequests.code:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
