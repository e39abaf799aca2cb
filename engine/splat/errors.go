package splat

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is matched by every MalformedHeaderError.
	ErrMalformedHeader = errors.New("splat: malformed header")
	// ErrUnknownProperty is matched by every UnknownPropertyError.
	ErrUnknownProperty = errors.New("splat: unknown property")
	// ErrDegenerateQuaternion is matched by every DegenerateQuaternionError.
	ErrDegenerateQuaternion = errors.New("splat: degenerate quaternion")
	// ErrTruncatedBody is matched by every TruncatedBodyError.
	ErrTruncatedBody = errors.New("splat: truncated body")
)

// MalformedHeaderError reports a header that cannot be parsed: a missing sentinel, a missing or
// invalid vertex count, an unsupported format, or an unknown property type under strict parsing.
type MalformedHeaderError struct {
	Reason string
	Line   int // 1-based header line, 0 when the problem is not tied to a line
}

func (e *MalformedHeaderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("splat: malformed header (line %d): %s", e.Line, e.Reason)
	}
	return "splat: malformed header: " + e.Reason
}

func (e *MalformedHeaderError) Is(target error) bool { return target == ErrMalformedHeader }

// UnknownPropertyError reports a lookup of a property the header does not declare.
type UnknownPropertyError struct {
	Name string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("splat: unknown property %q", e.Name)
}

func (e *UnknownPropertyError) Is(target error) bool { return target == ErrUnknownProperty }

// DegenerateQuaternionError reports a rotation quaternion whose length is too small to normalize.
type DegenerateQuaternionError struct {
	Index int // record index, -1 when unknown
}

func (e *DegenerateQuaternionError) Error() string {
	if e.Index < 0 {
		return "splat: degenerate quaternion"
	}
	return fmt.Sprintf("splat: degenerate quaternion at record %d", e.Index)
}

func (e *DegenerateQuaternionError) Is(target error) bool { return target == ErrDegenerateQuaternion }

// TruncatedBodyError reports a body shorter than Count*Stride bytes.
type TruncatedBodyError struct {
	Want int
	Got  int
}

func (e *TruncatedBodyError) Error() string {
	return fmt.Sprintf("splat: truncated body: want %d bytes, got %d", e.Want, e.Got)
}

func (e *TruncatedBodyError) Is(target error) bool { return target == ErrTruncatedBody }
