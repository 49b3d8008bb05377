package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	ErrNotFound         = errors.New("not found")
	ErrParse            = errors.New("parse error")
	ErrCyclicInclude    = errors.New("cyclic include")
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrWriteFailure     = errors.New("write failure")
)

// ErrorKind classifies compiler errors for summaries and history.
type ErrorKind string

// Error kinds.
const (
	ErrorKindNone             ErrorKind = ""
	ErrorKindNotFound         ErrorKind = "not-found"
	ErrorKindParse            ErrorKind = "parse"
	ErrorKindCyclicInclude    ErrorKind = "cyclic-include"
	ErrorKindInvalidAttribute ErrorKind = "invalid-attribute"
	ErrorKindWriteFailure     ErrorKind = "write-failure"
	ErrorKindInternal         ErrorKind = "internal"
)

// ErrorKindOf returns the kind of err.
func ErrorKindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrCyclicInclude):
		return ErrorKindCyclicInclude
	case errors.Is(err, ErrNotFound):
		return ErrorKindNotFound
	case errors.Is(err, ErrParse):
		return ErrorKindParse
	case errors.Is(err, ErrInvalidAttribute):
		return ErrorKindInvalidAttribute
	case errors.Is(err, ErrWriteFailure):
		return ErrorKindWriteFailure
	default:
		return ErrorKindInternal
	}
}

// What a NotFoundError refers to.
const (
	NotFoundDocument = "document"
	NotFoundPartial  = "partial"
	NotFoundStyle    = "style"
)

// NotFoundError reports a missing document, partial, or style.
type NotFoundError struct {
	Kind     string   // document, partial, or style
	Name     string   // requested name
	Document string   // top-level document being compiled
	NodePath string   // path of the referencing node
	Tried    []string // candidate files that were attempted
}

func (e *NotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %q not found", e.Kind, e.Name)
	if e.Document != "" {
		fmt.Fprintf(&sb, " (document %s", e.Document)
		if e.NodePath != "" {
			fmt.Fprintf(&sb, " at %s", e.NodePath)
		}
		sb.WriteByte(')')
	}
	if len(e.Tried) > 0 {
		fmt.Fprintf(&sb, "; tried %s", strings.Join(e.Tried, ", "))
	}
	return sb.String()
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ParseError reports malformed document content.
type ParseError struct {
	File   string
	Offset int64 // byte offset, -1 when unknown
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
	case e.Offset >= 0:
		return fmt.Sprintf("%s: offset %d: %s", e.File, e.Offset, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	}
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// CyclicIncludeError reports a partial that transitively includes itself.
// Chain lists the partial files from the outermost include to the repeat.
type CyclicIncludeError struct {
	Document string
	Chain    []string
}

func (e *CyclicIncludeError) Error() string {
	msg := "cyclic include: " + strings.Join(e.Chain, " -> ")
	if e.Document != "" {
		msg += " (document " + e.Document + ")"
	}
	return msg
}

// Is matches ErrCyclicInclude.
func (e *CyclicIncludeError) Is(target error) bool { return target == ErrCyclicInclude }

// InvalidAttributeError reports an attribute that was ignored.
// It is non-fatal: compilation continues with a default.
type InvalidAttributeError struct {
	Document  string
	NodePath  string
	Attribute string
	Msg       string
}

func (e *InvalidAttributeError) Error() string {
	loc := e.NodePath
	if e.Document != "" {
		loc = e.Document + " " + loc
	}
	return fmt.Sprintf("%s: invalid attribute %q: %s", strings.TrimSpace(loc), e.Attribute, e.Msg)
}

// Is matches ErrInvalidAttribute.
func (e *InvalidAttributeError) Is(target error) bool { return target == ErrInvalidAttribute }

// WriteFailureError reports an artifact that could not be written.
// The previous artifact content is left in place.
type WriteFailureError struct {
	Path string
	Err  error
}

func (e *WriteFailureError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *WriteFailureError) Unwrap() error { return e.Err }

// Is matches ErrWriteFailure.
func (e *WriteFailureError) Is(target error) bool { return target == ErrWriteFailure }
