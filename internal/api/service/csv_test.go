package service

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		delim rune
		quote rune
		want  []string
	}{
		{"simple", "a,b,c\nd,e,f\n", ',', '"', []string{"a", "b", "c"}},
		{"crlf", "a,b\r\nc,d", ',', '"', []string{"a", "b"}},
		{"no trailing newline", "a;b", ';', '"', []string{"a", "b"}},
		{"empty fields", ",,", ',', '"', []string{"", "", ""}},
		{"quoted delimiter", `"a,b",c`, ',', '"', []string{"a,b", "c"}},
		{"doubled quote", `"say ""hi""",x`, ',', '"', []string{`say "hi"`, "x"}},
		{"quoted newline", "\"line1\nline2\",x\n", ',', '"', []string{"line1\nline2", "x"}},
		{"custom quote", "'a|b'|'it''s'\n", '|', '\'', []string{"a|b", "it's"}},
		{"double quote is literal with custom quote", `"a"|b`, '|', '\'', []string{`"a"`, "b"}},
		{"tab delimiter", "name\temail\n", '\t', '"', []string{"name", "email"}},
		{"quoted last field with crlf", "a,\"b\"\r\nnext", ',', '"', []string{"a", "b"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := readRecord(bufio.NewReader(strings.NewReader(tc.in)), tc.delim, tc.quote)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestReadRecord_Errors(t *testing.T) {
	t.Parallel()

	_, err := readRecord(bufio.NewReader(strings.NewReader("")), ',', '"')
	require.ErrorIs(t, err, io.EOF)

	_, err = readRecord(bufio.NewReader(strings.NewReader(`"open,b`)), ',', '"')
	require.ErrorIs(t, err, errUnterminatedQuote)

	_, err = readRecord(bufio.NewReader(strings.NewReader(`"a"b,c`)), ',', '"')
	require.ErrorIs(t, err, errBareQuote)
}

func TestReadRecord_Sequential(t *testing.T) {
	t.Parallel()
	r := bufio.NewReader(strings.NewReader("a,b\n\"c\",d\n"))

	first, err := readRecord(r, ',', '"')
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, first)

	second, err := readRecord(r, ',', '"')
	require.NoError(t, err)
	require.Equal(t, []string{"c", "d"}, second)

	_, err = readRecord(r, ',', '"')
	require.ErrorIs(t, err, io.EOF)
}
