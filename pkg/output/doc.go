// Package output renders collected tweets as text.
//
// Two encodings are supported:
//   - raw: the complete JSON object of each tweet, compact, one per line
//   - tsv: the selected columns of each tweet separated by tabs, one line
//     per tweet; columns are JSON keys, dotted for nested fields
//
// Neither encoding emits a trailing newline.
package output
