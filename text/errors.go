package text

import (
	"errors"
	"fmt"
)

// Sentinel errors for text package.
var (
	// ErrInvalidConstraints is returned by Layout when the constraints leave
	// no inline space at all (zero or negative width without a boundary).
	ErrInvalidConstraints = errors.New("text: invalid constraints")

	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrUnknownFamily is returned when a font family was never registered.
	ErrUnknownFamily = errors.New("text: unknown font family")

	// ErrFontNotLoaded reports a family whose asynchronous load has not
	// finished yet.
	ErrFontNotLoaded = errors.New("text: font not yet loaded")
)

// ContentError reports an inline item whose style handle did not resolve.
// The item is replaced by a zero-width placeholder.
type ContentError struct {
	Index  int // position in the input content
	Handle StyleHandle
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("text: content %d: unresolved style %q", e.Index, string(e.Handle))
}

// BidiError reports a paragraph the bidi resolver could not process.
// The paragraph is laid out at its base level instead.
type BidiError struct {
	Paragraph int // paragraph start byte in the view
	Offset    int // first offending byte
}

func (e *BidiError) Error() string {
	return fmt.Sprintf("text: bidi: malformed input at byte %d (paragraph at %d)", e.Offset, e.Paragraph)
}

// FontResolutionError reports a text range no available font covers.
// The range is rendered with missing-glyph placeholders.
type FontResolutionError struct {
	Start, End int
	Family     string
}

func (e *FontResolutionError) Error() string {
	return fmt.Sprintf("text: no font covers bytes [%d,%d) (family %q)", e.Start, e.End, e.Family)
}

// ShapingError reports a range the shaping engine failed on.
// The range is rendered with missing-glyph placeholders.
type ShapingError struct {
	Start, End int
	Err        error
}

func (e *ShapingError) Error() string {
	return fmt.Sprintf("text: shaping bytes [%d,%d): %v", e.Start, e.End, e.Err)
}

func (e *ShapingError) Unwrap() error { return e.Err }

// FontNotLoadedError reports a family that was still loading during layout.
type FontNotLoadedError struct {
	Family string
}

func (e *FontNotLoadedError) Error() string {
	return fmt.Sprintf("text: font %q not yet loaded", e.Family)
}

func (e *FontNotLoadedError) Unwrap() error { return ErrFontNotLoaded }

// OverflowError describes content that did not fit the constraints.
// It is a layout result, never returned as a failure.
type OverflowError struct {
	// Start and End delimit the unplaced content in view bytes. When
	// everything was placed (Lines == 0) they delimit the line that
	// exceeds its segment the most.
	Start, End int

	// Width is the largest amount by which a placed line exceeds its
	// segment, caused by units that could not be broken.
	Width float64

	// Height is the block extent the unplaced content would need.
	Height float64

	// Lines is the number of lines the unplaced content would occupy.
	Lines int
}

func (e *OverflowError) Error() string {
	if e.Lines == 0 {
		return fmt.Sprintf("text: overflow: bytes [%d,%d) exceed the line by %.2f", e.Start, e.End, e.Width)
	}
	return fmt.Sprintf("text: overflow: bytes [%d,%d) unplaced, %.2f x %.2f beyond bounds",
		e.Start, e.End, e.Width, e.Height)
}
