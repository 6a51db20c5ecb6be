package pipeline

import "fmt"

// InputNotFoundError is returned when the input path does not exist.
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input path does not exist: %s", e.Path)
}

// OutputAlreadyExistsError is returned when the output path is already
// present. Runs never merge into an existing output tree.
type OutputAlreadyExistsError struct {
	Path string
}

func (e *OutputAlreadyExistsError) Error() string {
	return fmt.Sprintf("output path already exists: %s", e.Path)
}

// RecognitionError wraps a failed recognition call for one file.
type RecognitionError struct {
	File string
	Err  error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognition failed for %s: %v", e.File, e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// FilenameFormatError marks an input name without a usable extension.
type FilenameFormatError struct {
	Name string
}

func (e *FilenameFormatError) Error() string {
	return fmt.Sprintf("filename has no extension: %s", e.Name)
}
