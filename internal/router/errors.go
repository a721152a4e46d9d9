package router

import (
	"errors"
	"fmt"
)

// ErrAuthentication is returned when the router rejects credentials or the session token.
var ErrAuthentication = errors.New("router authentication failed")

// API error codes returned in <error><code> bodies.
const (
	codeNoRights           = 100003
	codeUsernameWrong      = 108001
	codePasswordWrong      = 108002
	codeAlreadyLoggedIn    = 108003
	codeUsernamePwdWrong   = 108006
	codeUsernamePwdOverRun = 108007
	codeWrongToken         = 125001
	codeWrongSession       = 125002
	codeWrongSessionToken  = 125003
)

// APIError is an <error> response from the router.
type APIError struct {
	Path    string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("router %s: error %d: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("router %s: error %d", e.Path, e.Code)
}

// Is makes errors.Is(err, ErrAuthentication) match credential and token errors.
func (e *APIError) Is(target error) bool {
	return target == ErrAuthentication && e.authFailure()
}

func (e *APIError) authFailure() bool {
	switch e.Code {
	case codeNoRights, codeUsernameWrong, codePasswordWrong, codeUsernamePwdWrong,
		codeUsernamePwdOverRun, codeWrongToken, codeWrongSession, codeWrongSessionToken:
		return true
	}
	return false
}

// StatusError is returned for non-200 HTTP responses.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("router %s: unexpected HTTP status %d", e.Path, e.StatusCode)
}
