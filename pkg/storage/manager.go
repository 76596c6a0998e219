package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Stdout is the destination name that selects standard output
const Stdout = "stdout"

// Writer delivers rendered crawl output to standard output or a file
type Writer struct {
	destination string
	stdout      io.Writer
}

// NewWriter creates a writer for destination; "" and "stdout" select
// standard output
func NewWriter(destination string) *Writer {
	return NewWriterTo(destination, os.Stdout)
}

// NewWriterTo is NewWriter with a replaceable standard output
func NewWriterTo(destination string, stdout io.Writer) *Writer {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		destination = Stdout
	}
	return &Writer{destination: destination, stdout: stdout}
}

// IsStdout reports whether output goes to standard output
func (w *Writer) IsStdout() bool {
	return w.destination == Stdout
}

// Destination returns the file path or "stdout"
func (w *Writer) Destination() string {
	return w.destination
}

// Write emits text. Standard output gets the text followed by a newline.
// A file is replaced with exactly text, never appended to.
func (w *Writer) Write(text string) error {
	if w.IsStdout() {
		if _, err := fmt.Fprintln(w.stdout, text); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}

	return writeFileAtomic(w.destination, strings.NewReader(text))
}

// writeFileAtomic writes r to filename through a temporary file and rename
func writeFileAtomic(filename string, r io.Reader) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	out, err := os.CreateTemp(dir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write output: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
