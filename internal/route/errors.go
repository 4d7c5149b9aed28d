package route

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownConverter indicates a template names a converter that is not registered.
	ErrUnknownConverter = errors.New("route: unknown converter")

	// ErrEmptyRoute indicates a template with no words.
	ErrEmptyRoute = errors.New("route: empty template")

	// ErrDuplicateCapture indicates the same capture name appears twice in one template.
	ErrDuplicateCapture = errors.New("route: duplicate capture name")

	// ErrConverterExists indicates a converter name is already defined.
	ErrConverterExists = errors.New("route: converter already defined")

	// ErrInvalidConverter indicates an empty converter name or a nil function.
	ErrInvalidConverter = errors.New("route: invalid converter")

	// ErrLengthMismatch indicates the input has a different word count than the route.
	ErrLengthMismatch = errors.New("route: word count mismatch")

	// ErrLiteralMismatch indicates an input word differs from a literal token.
	ErrLiteralMismatch = errors.New("route: literal mismatch")

	// ErrConversion matches any *ConversionError.
	ErrConversion = errors.New("route: conversion failed")
)

// UnknownConverterError names the converter a template referenced.
type UnknownConverterError struct {
	Template  string
	Converter string
}

func (e *UnknownConverterError) Error() string {
	return fmt.Sprintf("route %q: unknown converter %q", e.Template, e.Converter)
}

func (e *UnknownConverterError) Is(target error) bool {
	return target == ErrUnknownConverter
}

// ConversionError reports a captured word that a typed converter rejected.
type ConversionError struct {
	Converter string
	Word      string
	Err       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %q with %s: %v", e.Word, e.Converter, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}
