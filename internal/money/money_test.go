package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "grouped thousands with decimal comma",
			input: "1.234,56",
			want:  "1234.56",
		},
		{
			name:  "millions",
			input: "12.345.678,90",
			want:  "12345678.90",
		},
		{
			name:  "comma only",
			input: "75,88",
			want:  "75.88",
		},
		{
			name:  "dot only is a grouping separator",
			input: "1.234",
			want:  "1234",
		},
		{
			name:  "plain integer",
			input: "500",
			want:  "500",
		},
		{
			name:  "literal zero",
			input: "0,00",
			want:  "0",
		},
		{
			name:  "currency symbol",
			input: "R$ 1.500,00",
			want:  "1500.00",
		},
		{
			name:  "surrounding whitespace",
			input: "  2.000,10  ",
			want:  "2000.10",
		},
		{
			name:  "spaced minus",
			input: "- 75,88",
			want:  "-75.88",
		},
		{
			name:  "negative with symbol",
			input: "R$ -300,50",
			want:  "-300.50",
		},
		{
			name:  "fraction only comma",
			input: ",50",
			want:  "0.50",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "bare minus",
			input:   "- ",
			wantErr: true,
		},
		{
			name:    "textual residue",
			input:   "abc",
			wantErr: true,
		},
		{
			name:    "mixed digits and letters",
			input:   "12x3,45",
			wantErr: true,
		},
		{
			name:    "two decimal commas",
			input:   "1,2,3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidFormat)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			want := decimal.RequireFromString(tt.want)
			assert.True(t, want.Equal(got), "want %s, got %s", want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0,00"},
		{"1", "1,00"},
		{"75.88", "75,88"},
		{"999", "999,00"},
		{"1000", "1.000,00"},
		{"1234.56", "1.234,56"},
		{"12345678.9", "12.345.678,90"},
		{"100000", "100.000,00"},
		{"-1234.56", "-1.234,56"},
		{"-0.5", "-0,50"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.input)))
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	values := []string{
		"0", "0.01", "0.99", "1", "10.50", "999.99", "1000",
		"1234.56", "500000", "11500", "12345678.90", "999999999.99",
	}

	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			want := decimal.RequireFromString(v)
			got, err := Parse(Format(want))
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "round-trip of %s produced %s", want, got)
		})
	}
}
