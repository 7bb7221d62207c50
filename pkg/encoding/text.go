// Package encoding provides text decoding for interchange documents.
//
// Text mesh formats are nominally ASCII, but files produced by older tools
// often carry a byte order mark or use a legacy code page in comments and
// group names. Readers returned here always yield UTF-8.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	textenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned when a charset label cannot be resolved.
var ErrUnknownCharset = errors.New("unknown charset")

// Lookup resolves a WHATWG charset label such as "utf-8", "windows-1252"
// or "euc-kr". An empty label means UTF-8.
func Lookup(label string) (textenc.Encoding, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, label)
	}
	return enc, nil
}

// CanonicalName returns the canonical name for a charset label.
func CanonicalName(label string) (string, error) {
	enc, err := Lookup(label)
	if err != nil {
		return "", err
	}
	return htmlindex.Name(enc)
}

// NewReader wraps r so that it yields UTF-8. A UTF-8 or UTF-16 byte order
// mark takes precedence over the charset label and is stripped.
func NewReader(r io.Reader, charset string) (io.Reader, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// Decode converts a whole document to UTF-8.
func Decode(data []byte, charset string) ([]byte, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return nil, err
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", charset, err)
	}
	return out, nil
}

// TrimPadding removes trailing NUL and space bytes, as used to pad
// binary container chunks to alignment.
func TrimPadding(data []byte) []byte {
	return bytes.TrimRight(data, "\x00 ")
}

// NormalizePath converts a document-relative reference into a clean,
// slash-separated path suitable for io/fs lookup.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// ResolveRelative joins ref onto the directory of the document at base.
func ResolveRelative(base, ref string) string {
	return NormalizePath(path.Join(path.Dir(NormalizePath(base)), NormalizePath(ref)))
}
