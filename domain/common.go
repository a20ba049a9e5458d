package domain

import (
	"errors"
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageUnprocessable        = "unprocessable"
	MessageResourceNotFound     = "resource not found"
	MessageInternalServerError  = "internal server error"
	MessageMethodNotAllowed     = "method not allowed"
	MessageTooManyRequests      = "too many requests"
	MessagePong                 = "pong"

	ErrUnprocessable = errors.New("unprocessable")
	ErrParseID       = errors.New("failed to parse id")
)
