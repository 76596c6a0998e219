// Package storage writes rendered crawl output to its destination.
//
// The destination "stdout" (the default) prints the text followed by a
// newline. Any other destination is a file path; the file is created or
// truncated and holds exactly the rendered text. Files are written to a
// temporary file in the same directory and renamed into place, so an
// interrupted run never leaves a half-written file behind.
//
// Usage:
//
//	w := storage.NewWriter(cfg.Output.Destination)
//	if err := w.Write(text); err != nil {
//		return err
//	}
package storage
