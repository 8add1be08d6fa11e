package export

import "fmt"

// NoClipsError means the job was rejected before any work started.
type NoClipsError struct{}

func (NoClipsError) Error() string {
	return "export requires at least one clip on the visual track"
}

// SegmentEncodeError is fatal: one timeline clip failed to encode into
// its intermediate segment.
type SegmentEncodeError struct {
	Index    int
	FilePath string
	Err      error
}

func (e SegmentEncodeError) Error() string {
	return fmt.Sprintf("encoding segment %d (%s) failed: %v", e.Index, e.FilePath, e.Err)
}

func (e SegmentEncodeError) Unwrap() error { return e.Err }

// SegmentMissingError is fatal: the engine exited cleanly but produced
// no output file, a silent-no-op failure mode seen with some inputs.
type SegmentMissingError struct {
	Index       int
	FilePath    string
	SegmentPath string
}

func (e SegmentMissingError) Error() string {
	return fmt.Sprintf("segment %d (%s): engine produced no output at %s",
		e.Index, e.FilePath, e.SegmentPath)
}

// ConcatError is fatal: the stream-copy merge of segments failed.
type ConcatError struct {
	Err    error
	Output string
}

func (e ConcatError) Error() string {
	return fmt.Sprintf("concatenating segments failed: %v", e.Err)
}

func (e ConcatError) Unwrap() error { return e.Err }

// FinalEncodeError is fatal and surfaces the raw engine diagnostics.
type FinalEncodeError struct {
	Err    error
	Output string
}

func (e FinalEncodeError) Error() string {
	return fmt.Sprintf("final encode failed: %v\n%s", e.Err, e.Output)
}

func (e FinalEncodeError) Unwrap() error { return e.Err }
