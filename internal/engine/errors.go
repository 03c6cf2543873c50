package engine

import (
	"errors"
	"fmt"
)

// Kind classifies terminal job failures.
type Kind int

const (
	// KindInvalidParameter marks a rejected parameter, detected before
	// any frame is processed.
	KindInvalidParameter Kind = iota
	// KindUnsupportedMedia marks unreadable or codec-less input, also
	// detected before processing starts.
	KindUnsupportedMedia
	// KindResourceExhausted marks a job too large for available memory.
	KindResourceExhausted
	// KindDecodeFailure marks a mid-run decoder error.
	KindDecodeFailure
	// KindEncodeFailure marks a mid-run encoder or mux error.
	KindEncodeFailure
	// KindCancelled marks a caller-requested stop; not a failure.
	KindCancelled
)

// String returns the kind's wire name.
func (k Kind) String() string {
	switch k {
	case KindInvalidParameter:
		return "invalid_parameter"
	case KindUnsupportedMedia:
		return "unsupported_media"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindDecodeFailure:
		return "decode_failure"
	case KindEncodeFailure:
		return "encode_failure"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// JobError is the terminal error of a failed job.
type JobError struct {
	Kind Kind
	// Field names the offending parameter for KindInvalidParameter.
	Field string
	// FrameIndex is the frame being processed when a mid-run failure
	// occurred, -1 otherwise.
	FrameIndex int
	Err        error
}

func (e *JobError) Error() string {
	switch {
	case e.Kind == KindInvalidParameter && e.Field != "":
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Field, e.Err)
	case e.FrameIndex >= 0:
		return fmt.Sprintf("%s at frame %d: %v", e.Kind, e.FrameIndex, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain. Unclassified
// errors report as decode failures, the most common mid-run cause.
func KindOf(err error) Kind {
	var je *JobError
	if errors.As(err, &je) {
		return je.Kind
	}
	return KindDecodeFailure
}

func invalidParam(field string, err error) *JobError {
	return &JobError{Kind: KindInvalidParameter, Field: field, FrameIndex: -1, Err: err}
}

func unsupportedMedia(err error) *JobError {
	return &JobError{Kind: KindUnsupportedMedia, FrameIndex: -1, Err: err}
}

func resourceExhausted(err error) *JobError {
	return &JobError{Kind: KindResourceExhausted, FrameIndex: -1, Err: err}
}

func decodeFailure(frame int, err error) *JobError {
	return &JobError{Kind: KindDecodeFailure, FrameIndex: frame, Err: err}
}

func encodeFailure(frame int, err error) *JobError {
	return &JobError{Kind: KindEncodeFailure, FrameIndex: frame, Err: err}
}

func cancelled() *JobError {
	return &JobError{Kind: KindCancelled, FrameIndex: -1, Err: errors.New("job cancelled")}
}
