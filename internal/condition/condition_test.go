package condition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewName(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantErr    bool
		wantReason InvalidNameReason
	}{
		{
			name: "plain word",
			raw:  "nn",
		},
		{
			name: "hyphenated",
			raw:  "heap-allocated",
		},
		{
			name: "underscored",
			raw:  "ptr_aligned",
		},
		{
			name:       "trailing space",
			raw:        "nn ",
			wantErr:    true,
			wantReason: TrailingWhitespace,
		},
		{
			name:       "leading space",
			raw:        " nn",
			wantErr:    true,
			wantReason: TrailingWhitespace,
		},
		{
			name:       "leading tab",
			raw:        "\tnn",
			wantErr:    true,
			wantReason: TrailingWhitespace,
		},
		{
			name:       "two words",
			raw:        "nn ptr",
			wantErr:    true,
			wantReason: MultipleWords,
		},
		{
			name:       "three words",
			raw:        "the nn ptr",
			wantErr:    true,
			wantReason: MultipleWords,
		},
		{
			name:       "newline separated",
			raw:        "nn\nptr",
			wantErr:    true,
			wantReason: MultipleWords,
		},
		{
			name:       "whitespace only",
			raw:        "   ",
			wantErr:    true,
			wantReason: MultipleWords,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewName(tt.raw)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.raw, got.String())

				return
			}

			var invalid *InvalidNameError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantReason, invalid.Reason)
			assert.Equal(t, tt.raw, invalid.Raw)
		})
	}
}

func TestNewNameDeterministic(t *testing.T) {
	// Validating the same string twice yields the same outcome, including
	// the rejection reason.
	for i := 0; i < 2; i++ {
		_, err := NewName("a b")
		var invalid *InvalidNameError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, MultipleWords, invalid.Reason)
	}
}
