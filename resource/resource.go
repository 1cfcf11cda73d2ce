package resource

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Encoding names the text encoding of a resource.
type Encoding string

const (
	UTF8    Encoding = "utf-8"
	UTF16LE Encoding = "utf-16-le"
)

// ErrNotFound is returned when a locator does not name an existing resource.
var ErrNotFound = errors.New("resource not found")

// Reader gives access to the raw content of named resources. Locators are
// file paths or s3://bucket/key URLs.
type Reader interface {
	// ReadAllLines returns the lines of the resource without line terminators.
	ReadAllLines(ctx context.Context, locator string, enc Encoding) ([]string, error)

	// ReadAllContent returns the whole decoded content of the resource.
	ReadAllContent(ctx context.Context, locator string, enc Encoding) (string, error)

	// List returns the locators of the resources directly under the
	// directory-like locator, sorted.
	List(ctx context.Context, locator string) ([]string, error)
}

// Decode converts raw bytes in the given encoding to a string. A leading
// byte order mark is dropped.
func Decode(raw []byte, enc Encoding) (string, error) {
	switch enc {
	case "", UTF8:
		return strings.TrimPrefix(string(raw), "\ufeff"), nil
	case UTF16LE:
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decoding %s: %w", enc, err)
		}
		return string(out), nil
	}
	return "", fmt.Errorf("unsupported encoding: %s", enc)
}

// SplitLines splits content on line breaks. Trailing carriage returns are
// removed and a final empty line (content ending in a newline) is dropped.
func SplitLines(content string) []string {
	if content == "" {
		return []string{}
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Join joins locator elements, using URL path semantics for s3 locators
// and the OS path semantics otherwise.
func Join(base string, elem ...string) string {
	if bucket, key, ok := parseS3(base); ok {
		parts := append([]string{key}, elem...)
		return s3Scheme + bucket + "/" + strings.TrimPrefix(path.Join(parts...), "/")
	}
	return filepath.Join(append([]string{base}, elem...)...)
}

// IsS3 reports whether loc is an s3://bucket/key locator.
func IsS3(loc string) bool {
	_, _, ok := parseS3(loc)
	return ok
}

// IsAbs reports whether loc is an absolute path or a remote locator.
func IsAbs(loc string) bool {
	if _, _, ok := parseS3(loc); ok {
		return true
	}
	return filepath.IsAbs(loc)
}

// Base returns the last element of the locator.
func Base(loc string) string {
	if _, key, ok := parseS3(loc); ok {
		return path.Base(key)
	}
	return filepath.Base(loc)
}
