package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeNotFound           Code = "NOT_FOUND"
	CodeForbidden          Code = "FORBIDDEN"
	CodeDuplicateLoginID   Code = "DUPLICATE_LOGIN_ID"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeAccountDisabled    Code = "ACCOUNT_DISABLED"
	CodeWeakPassword       Code = "WEAK_PASSWORD"
	CodeIncorrectPassword  Code = "INCORRECT_PASSWORD"
	CodeInsufficientStock  Code = "INSUFFICIENT_STOCK"
	CodeInvalidDuration    Code = "INVALID_DURATION"
	CodeAlreadyProcessed   Code = "ALREADY_PROCESSED"
	CodeAlreadyCancelled   Code = "ALREADY_CANCELLED"
	CodeAlreadyInitialized Code = "ALREADY_INITIALIZED"
	CodeInternal           Code = "INTERNAL_ERROR"
)

type Metadata struct {
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:      true,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeNotFound: {
		Retryable:     false,
		PublicMessage: "resource not found",
	},
	CodeForbidden: {
		Retryable:     false,
		PublicMessage: "access denied",
	},
	CodeDuplicateLoginID: {
		Retryable:      true,
		PublicMessage:  "login id already exists",
		DetailsAllowed: true,
	},
	CodeInvalidCredentials: {
		Retryable:     true,
		PublicMessage: "invalid credentials",
	},
	CodeAccountDisabled: {
		Retryable:     false,
		PublicMessage: "account disabled",
	},
	CodeWeakPassword: {
		Retryable:      true,
		PublicMessage:  "password too weak",
		DetailsAllowed: true,
	},
	CodeIncorrectPassword: {
		Retryable:     true,
		PublicMessage: "incorrect current password",
	},
	CodeInsufficientStock: {
		Retryable:      true,
		PublicMessage:  "insufficient stock",
		DetailsAllowed: true,
	},
	CodeInvalidDuration: {
		Retryable:      true,
		PublicMessage:  "invalid shift duration",
		DetailsAllowed: true,
	},
	CodeAlreadyProcessed: {
		Retryable:     false,
		PublicMessage: "request already processed",
	},
	CodeAlreadyCancelled: {
		Retryable:     false,
		PublicMessage: "sale already cancelled",
	},
	CodeAlreadyInitialized: {
		Retryable:     false,
		PublicMessage: "system already initialized",
	},
	CodeInternal: {
		Retryable:     true,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
