package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/encoding"
)

func readAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, err := encoding.NewReader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), r.Charset
}

func TestNewReader(t *testing.T) {
	type testCase struct {
		name        string
		input       []byte
		want        string
		wantCharset string
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte("customer_name,product\nRenée,Crème Pot\n"),
			want:        "customer_name,product\nRenée,Crème Pot\n",
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, "invoice_number\n"...),
			want:        "invoice_number\n",
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF16LE",
			input:       []byte{0xFF, 0xFE, 'I', 0x00, 'N', 0x00, 'V', 0x00},
			want:        "INV",
			wantCharset: encoding.UTF16LE,
		},
		{
			name:        "UTF16BE",
			input:       []byte{0xFE, 0xFF, 0x00, 'I', 0x00, 'N', 0x00, 'V'},
			want:        "INV",
			wantCharset: encoding.UTF16BE,
		},
		{
			name:        "Empty",
			input:       nil,
			want:        "",
			wantCharset: encoding.UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := readAll(t, tt.input)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCharset, charset)
		})
	}
}

func TestNewReader_Latin1(t *testing.T) {
	// "Crème Pot;Renée" in windows-1252: è = 0xE8, é = 0xE9
	latin1 := []byte{
		'C', 'r', 0xE8, 'm', 'e', ' ', 'P', 'o', 't', ';',
		'R', 'e', 'n', 0xE9, 'e', '\n',
	}

	got, charset := readAll(t, latin1)

	assert.Equal(t, "Crème Pot;Renée\n", got)
	assert.NotEqual(t, encoding.UTF8, charset)
}

func TestNewReader_RuneSplitAtSniffBoundary(t *testing.T) {
	// é straddles the end of the sniffed window
	input := strings.Repeat("a", 4095) + "é and more"

	got, charset := readAll(t, []byte(input))

	assert.Equal(t, input, got)
	assert.Equal(t, encoding.UTF8, charset)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, encoding.UTF8, encoding.Detect([]byte("plain ascii")))
	assert.NotEqual(t, encoding.UTF8, encoding.Detect([]byte{0xFF, 0xFE, 0xE9}))
}
