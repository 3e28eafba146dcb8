package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/acctree/internal/encoding"
)

func readAll(t *testing.T, in []byte) (string, string) {
	t.Helper()
	r, charset, err := encoding.Detect(bytes.NewReader(in))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(got), charset
}

func TestDetect(t *testing.T) {
	const header = "Account Name,Parent Account\nDespesas Gerais,Despesas - DC\n"

	tests := []struct {
		name    string
		input   []byte
		want    string
		charset string
	}{
		{
			name:    "plain UTF-8",
			input:   []byte("Account Name,Parent Account\nManutenção,Despesas - DC\n"),
			want:    "Account Name,Parent Account\nManutenção,Despesas - DC\n",
			charset: encoding.UTF8,
		},
		{
			name:    "UTF-8 BOM stripped",
			input:   append([]byte{0xEF, 0xBB, 0xBF}, header...),
			want:    header,
			charset: encoding.UTF8,
		},
		{
			name:    "UTF-16LE with BOM",
			input:   []byte{0xFF, 0xFE, 'A', 0, 'b', 0, 0xE7, 0, '\n', 0},
			want:    "Abç\n",
			charset: encoding.UTF16LE,
		},
		{
			name:    "UTF-16BE with BOM",
			input:   []byte{0xFE, 0xFF, 0, 'A', 0, 'b', 0, 0xE7, 0, '\n'},
			want:    "Abç\n",
			charset: encoding.UTF16BE,
		},
		{
			name:  "Windows-1252",
			input: []byte{'M', 'a', 'n', 'u', 't', 'e', 'n', 0xE7, 0xE3, 'o', '\n'},
			want:  "Manutenção\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := readAll(t, tt.input)
			assert.Equal(t, tt.want, got)
			if tt.charset != "" {
				assert.Equal(t, tt.charset, charset)
			}
		})
	}
}

func TestDetect_LongUTF8SplitAtWindow(t *testing.T) {
	// Place a two-byte rune across the sniff boundary.
	input := strings.Repeat("a", 4095) + "ção\n"

	got, charset := readAll(t, []byte(input))
	assert.Equal(t, encoding.UTF8, charset)
	assert.Equal(t, input, got)
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	r, err := encoding.NewUTF8Reader(bytes.NewReader(nil))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}
