package service

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var (
	errUnterminatedQuote = errors.New("unterminated quoted field")
	errBareQuote         = errors.New("unexpected character after closing quote")
)

// readRecord reads one delimited record, honouring quote as the quoting
// character with doubled quotes as escapes. encoding/csv fixes the quote to
// '"', so datasets with another quote character need this.
func readRecord(r *bufio.Reader, delim, quote rune) ([]string, error) {
	var (
		fields []string
		field  strings.Builder
		read   bool
	)
	for {
		c, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			if !read {
				return nil, io.EOF
			}
			return append(fields, field.String()), nil
		}
		if err != nil {
			return nil, err
		}
		read = true

		switch {
		case c == quote && field.Len() == 0:
			if err := readQuoted(r, &field, quote); err != nil {
				return nil, err
			}
			next, _, err := r.ReadRune()
			if errors.Is(err, io.EOF) {
				return append(fields, field.String()), nil
			}
			if err != nil {
				return nil, err
			}
			switch next {
			case delim:
				fields = append(fields, field.String())
				field.Reset()
			case '\n':
				return append(fields, field.String()), nil
			case '\r':
				if p, _, err := r.ReadRune(); err == nil && p != '\n' {
					_ = r.UnreadRune()
				}
				return append(fields, field.String()), nil
			default:
				return nil, errBareQuote
			}
		case c == delim:
			fields = append(fields, field.String())
			field.Reset()
		case c == '\n':
			return append(fields, strings.TrimSuffix(field.String(), "\r")), nil
		default:
			field.WriteRune(c)
		}
	}
}

// readQuoted consumes a quoted field body up to its closing quote.
func readQuoted(r *bufio.Reader, field *strings.Builder, quote rune) error {
	for {
		c, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return errUnterminatedQuote
		}
		if err != nil {
			return err
		}
		if c != quote {
			field.WriteRune(c)
			continue
		}
		p, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if p == quote {
			field.WriteRune(quote)
			continue
		}
		_ = r.UnreadRune()
		return nil
	}
}
