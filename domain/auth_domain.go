package domain

import (
	"net/http"
)

const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

var (
	MessageMissingAuthHeader      = "authorization header is expected"
	MessageMalformedAuthHeader    = "authorization header must be bearer token"
	MessageInvalidHeader          = "invalid header"
	MessageKeyNotFound            = "unable to find the appropriate key"
	MessageFailedFetchKeys        = "unable to fetch signing keys"
	MessageTokenExpired           = "token expired"
	MessageInvalidClaims          = "incorrect claims, please check the audience and issuer"
	MessageFailedParseToken       = "unable to parse authentication token"
	MessageMissingPermissions     = "permissions not included in JWT"
	MessageInsufficientPermission = "permission not found"
)

type AuthErrorKind int

const (
	AuthUnauthorized AuthErrorKind = iota + 1
	AuthForbidden
)

// AuthError reports why a request failed the auth check.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func NewUnauthorizedError(message string, err error) *AuthError {
	return &AuthError{Kind: AuthUnauthorized, Message: message, Err: err}
}

func NewForbiddenError(message string) *AuthError {
	return &AuthError{Kind: AuthForbidden, Message: message}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) StatusCode() int {
	if e.Kind == AuthForbidden {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}
