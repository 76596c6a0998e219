package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"tweetcrawl/pkg/twitter"
)

// Format is an output encoding
type Format string

const (
	// FormatRaw writes each tweet's complete JSON object on its own line
	FormatRaw Format = "raw"
	// FormatTSV writes the selected columns of each tweet separated by tabs
	FormatTSV Format = "tsv"
)

// textColumn falls back to the tweet body when the object has no "text" key
const textColumn = "text"

// DefaultColumns are the tsv columns used when none are given
var DefaultColumns = []string{"id"}

// ParseFormat converts a flag value into a Format. "columnar" is accepted
// as an alias for tsv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return FormatRaw, nil
	case "tsv", "columnar":
		return FormatTSV, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected raw or tsv)", s)
	}
}

// Render encodes tweets in format. Lines are joined by "\n" with no trailing
// newline, so an empty input renders as "".
func Render(tweets []twitter.Tweet, format Format, columns []string) (string, error) {
	lines := make([]string, 0, len(tweets))

	switch format {
	case FormatRaw:
		for i, tw := range tweets {
			data, err := tw.MarshalJSON()
			if err != nil {
				return "", fmt.Errorf("tweet %d: %w", i, err)
			}
			lines = append(lines, string(data))
		}
	case FormatTSV:
		if len(columns) == 0 {
			columns = DefaultColumns
		}
		for i, tw := range tweets {
			line, err := row(tw, columns)
			if err != nil {
				return "", fmt.Errorf("tweet %d: %w", i, err)
			}
			lines = append(lines, line)
		}
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}

	return strings.Join(lines, "\n"), nil
}

// row renders the named columns of one tweet
func row(tw twitter.Tweet, columns []string) (string, error) {
	data, err := tw.MarshalJSON()
	if err != nil {
		return "", err
	}

	cells := make([]string, len(columns))
	for i, col := range columns {
		cell, err := Cell(data, col)
		if err != nil && col == textColumn && tw.Body() != "" {
			// tweet_mode=extended sends full_text in place of text
			cell, err = cellReplacer.Replace(tw.Body()), nil
		}
		if err != nil {
			return "", err
		}
		cells[i] = cell
	}
	return strings.Join(cells, "\t"), nil
}

// cellReplacer keeps every tweet on one row
var cellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// Cell extracts column from a JSON object. Dotted names walk nested objects
// and numeric segments index arrays, e.g. "entities.hashtags.0.text".
func Cell(data []byte, column string) (string, error) {
	value := jsoniter.Get(data, columnPath(column)...)

	switch value.ValueType() {
	case jsoniter.InvalidValue:
		return "", fmt.Errorf("column %q not found", column)
	case jsoniter.NilValue:
		return "", nil
	case jsoniter.StringValue:
		return cellReplacer.Replace(value.ToString()), nil
	case jsoniter.ObjectValue, jsoniter.ArrayValue:
		var compact bytes.Buffer
		if err := json.Compact(&compact, []byte(value.ToString())); err != nil {
			return "", fmt.Errorf("column %q: %w", column, err)
		}
		return compact.String(), nil
	default:
		// numbers and booleans keep their literal JSON text
		return value.ToString(), nil
	}
}

func columnPath(column string) []interface{} {
	parts := strings.Split(column, ".")
	path := make([]interface{}, len(parts))
	for i, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			path[i] = n
		} else {
			path[i] = p
		}
	}
	return path
}
