package wire

// FrameKind identifies a wire-level unit by its leading tag.
type FrameKind uint8

const (
	FrameStatus FrameKind = iota + 1
	FrameError
	FrameInteger
	FrameBulk
	FrameArray
)

func (k FrameKind) String() string {
	switch k {
	case FrameStatus:
		return "status"
	case FrameError:
		return "error"
	case FrameInteger:
		return "integer"
	case FrameBulk:
		return "bulk"
	case FrameArray:
		return "array"
	default:
		return "unknown"
	}
}

// Frame is a decoded response unit.
// Only the field matching Kind is meaningful.
type Frame struct {
	Kind FrameKind

	// Text is the line after the tag, for status and error frames.
	Text string

	// Int is the value of an integer frame.
	Int int64

	// Bulk is the payload of a bulk frame. nil means absent ($-1); a
	// zero-length non-nil slice means present and empty ($0).
	Bulk []byte

	// Array holds the elements of an array frame, in wire order.
	Array []Frame
}

// IsNil reports whether f is an absent bulk value.
func (f Frame) IsNil() bool {
	return f.Kind == FrameBulk && f.Bulk == nil
}

// Err returns a ResponseError for error frames and nil otherwise.
func (f Frame) Err() error {
	if f.Kind == FrameError {
		return &ResponseError{Message: f.Text}
	}
	return nil
}
