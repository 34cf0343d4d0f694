package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrProcessSpawn ErrorType = iota
	ErrPromptTimeout
	ErrSessionTimeout
	ErrCancelled
	ErrSessionIO
	ErrKeyImport
	ErrKeyNotFound
	ErrKeyQuery
	ErrKeyRemove
	ErrSigning
	ErrUnsignedFile
	ErrInvalidArgument
	ErrReport
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrProcessSpawn:
		return "ProcessSpawn"
	case ErrPromptTimeout:
		return "PromptTimeout"
	case ErrSessionTimeout:
		return "SessionTimeout"
	case ErrCancelled:
		return "Cancelled"
	case ErrSessionIO:
		return "SessionIO"
	case ErrKeyImport:
		return "PublicKeyImport"
	case ErrKeyNotFound:
		return "PublicKeyNotFound"
	case ErrKeyQuery:
		return "KeyQuery"
	case ErrKeyRemove:
		return "KeyRemove"
	case ErrSigning:
		return "Signing"
	case ErrUnsignedFile:
		return "UnsignedFile"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrReport:
		return "Report"
	default:
		return "Unknown"
	}
}

// TrustError is the error returned by every key, signing and session
// operation. Subject names what the operation was about (a command line,
// a fingerprint, a package file) and Output keeps the raw text the
// external tool produced, if any.
type TrustError struct {
	Type    ErrorType
	Subject string
	Output  string
	Err     error
}

// Error implements the error interface
func (e *TrustError) Error() string {
	msg := e.message()
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

func (e *TrustError) message() string {
	switch e.Type {
	case ErrProcessSpawn:
		return fmt.Sprintf("could not start %s", e.Subject)
	case ErrPromptTimeout:
		return fmt.Sprintf("prompt never appeared while running %s", e.Subject)
	case ErrSessionTimeout:
		return fmt.Sprintf("%s did not finish in time", e.Subject)
	case ErrCancelled:
		return fmt.Sprintf("%s was cancelled", e.Subject)
	case ErrSessionIO:
		return fmt.Sprintf("could not write to the terminal of %s", e.Subject)
	case ErrKeyImport:
		return fmt.Sprintf("public key %s could not be imported in RPM database", e.Subject)
	case ErrKeyNotFound:
		return fmt.Sprintf("no public key like %s in RPM database", e.Subject)
	case ErrKeyQuery:
		return "could not list public keys in RPM database"
	case ErrKeyRemove:
		return fmt.Sprintf("public key %s could not be removed from RPM database", e.Subject)
	case ErrSigning:
		return fmt.Sprintf("failed to sign %s", e.Subject)
	case ErrUnsignedFile:
		return fmt.Sprintf("file %s is not signed", e.Subject)
	default:
		return e.Subject
	}
}

// Unwrap returns the wrapped error
func (e *TrustError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *TrustError of the same type. A target
// with an empty Subject matches any subject.
func (e *TrustError) Is(target error) bool {
	t, ok := target.(*TrustError)
	if !ok {
		if target == context.Canceled {
			return e.Type == ErrCancelled
		}
		return false
	}
	if t.Type != e.Type {
		return false
	}
	return t.Subject == "" || t.Subject == e.Subject
}

// Kind returns a sentinel usable with errors.Is to match any error of type t
func Kind(t ErrorType) error {
	return &TrustError{Type: t}
}

// IsType reports whether err, or any error it wraps, is a *TrustError of type t
func IsType(err error, t ErrorType) bool {
	var te *TrustError
	if !errors.As(err, &te) {
		return false
	}
	return te.Type == t
}

// NewError builds a TrustError without a wrapped cause
func NewError(t ErrorType, subject, output string) *TrustError {
	return &TrustError{Type: t, Subject: subject, Output: output}
}
