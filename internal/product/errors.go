package product

import (
	"errors"
	"fmt"
)

var ErrInvalidArgument = errors.New("invalid argument")

type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidArgument }

type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse product: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }
