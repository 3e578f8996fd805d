package errors

import (
	"github.com/cockroachdb/errors"
)

// Stable machine-readable codes shared by every login flow.
const (
	CodeAuthFailed         = "AUTH_FAILED"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodeAuthMethodCanceled = "AUTH_METHOD_CANCELED"

	CodeAWSLoginNonInteractive    = "AWS_LOGIN_NON_INTERACTIVE"
	CodeAWSLoginNoCode            = "AWS_LOGIN_NO_CODE"
	CodeAWSLoginTokenExchange     = "AWS_LOGIN_TOKEN_EXCHANGE_FAILED"
	CodeAWSLoginInvalidJWT        = "AWS_LOGIN_INVALID_JWT"
	CodeAWSLoginInvalidARN        = "AWS_LOGIN_INVALID_SESSION_ARN"
	CodeAWSLoginInvalidToken      = "AWS_LOGIN_INVALID_TOKEN"
	CodeAWSSSOLoginNonInteractive = "AWS_SSO_LOGIN_NON_INTERACTIVE"
	CodeAWSSSOLoginNoCode         = "AWS_SSO_LOGIN_NO_CODE"
	CodeAWSSSONotConfigured       = "AWS_SSO_NOT_CONFIGURED"
	CodeAWSSSOMissingRegion       = "AWS_SSO_MISSING_REGION"
	CodeAWSSSORegisterClient      = "AWS_SSO_REGISTER_CLIENT_FAILED"
	CodeAWSSSOCreateToken         = "AWS_SSO_CREATE_TOKEN_FAILED"
)

// Callback code suffixes, appended to a flow prefix ("AWS", "AWS_SSO").
const (
	SuffixLoginFailed        = "_LOGIN_FAILED"
	SuffixLoginStateMismatch = "_LOGIN_STATE_MISMATCH"
	SuffixLoginMissingCode   = "_LOGIN_MISSING_CODE"
	SuffixLoginTimeout       = "_LOGIN_TIMEOUT"
)

// codedError attaches a stable code to an error.
type codedError struct {
	cause error
	code  string
}

func (e *codedError) Error() string {
	return e.cause.Error()
}

func (e *codedError) Cause() error {
	return e.cause
}

func (e *codedError) Unwrap() error {
	return e.cause
}

// Code returns the stable error code.
func (e *codedError) Code() string {
	return e.code
}

// WithCode attaches a stable machine-readable code to an error.
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &codedError{cause: err, code: code}
}

// GetCode returns the outermost code attached to the error chain, or "" when none is present.
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code string) bool {
	return code != "" && GetCode(err) == code
}
