package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrUnknownElement    = errors.New("unknown element")
	ErrUnknownAlloy      = errors.New("unknown alloy")
	ErrUnknownPart       = errors.New("unknown part")
	ErrDuplicatePartCode = errors.New("duplicate part code")
	ErrDuplicateElement  = errors.New("duplicate element")
	ErrReferenceInUse    = errors.New("reference in use")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrOutOfRange        = errors.New("out of range")
)

// Validationf returns an error that matches ErrValidation.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// UnknownElementsError reports every composition symbol that could not be resolved.
type UnknownElementsError struct {
	Symbols []string
}

func NewUnknownElementsError(symbols []string) *UnknownElementsError {
	s := append([]string(nil), symbols...)
	sort.Strings(s)
	return &UnknownElementsError{Symbols: s}
}

func (e *UnknownElementsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownElement, strings.Join(e.Symbols, ", "))
}

func (e *UnknownElementsError) Is(target error) bool {
	return target == ErrUnknownElement
}

// InUseError lists the part codes still referencing an element or alloy.
type InUseError struct {
	What      string
	PartCodes []string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s: %s referenced by parts %s", ErrReferenceInUse, e.What, strings.Join(e.PartCodes, ", "))
}

func (e *InUseError) Is(target error) bool {
	return target == ErrReferenceInUse
}

// Kind returns the short name of the taxonomy entry err belongs to, or
// "service_error" when err is not a domain error.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrUnknownElement):
		return "unknown_element"
	case errors.Is(err, ErrUnknownAlloy):
		return "unknown_alloy"
	case errors.Is(err, ErrUnknownPart):
		return "unknown_part"
	case errors.Is(err, ErrDuplicatePartCode):
		return "duplicate_part_code"
	case errors.Is(err, ErrDuplicateElement):
		return "duplicate_element"
	case errors.Is(err, ErrReferenceInUse):
		return "reference_in_use"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	default:
		return "service_error"
	}
}

// Missing returns the unresolved identifiers carried by err, if any.
func Missing(err error) []string {
	var unknown *UnknownElementsError
	if errors.As(err, &unknown) {
		return unknown.Symbols
	}

	var inUse *InUseError
	if errors.As(err, &inUse) {
		return inUse.PartCodes
	}

	return nil
}
