package annotation

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oblicheck/oblicheck/internal/condition"
)

var testMarker = regexp.MustCompile(`(?mi)^[ \t]*#+ unsafe[ \t]*$`)

type pair struct {
	name string
	text string
}

func pairsOf(sec *Section) []pair {
	var out []pair
	for _, e := range sec.Entries {
		out = append(out, pair{name: e.Name.String(), text: e.Text})
	}

	return out
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     []pair
		wantKind ErrorKind
		wantErr  bool
	}{
		{
			name:     "marker without bullets",
			text:     "# Unsafe",
			wantErr:  true,
			wantKind: EmptyMarker,
		},
		{
			name:     "no marker",
			text:     "This is a random doc comment",
			wantErr:  true,
			wantKind: NoMarkerPattern,
		},
		{
			name: "multi line no marker",
			text: "This is a random doc comment.\n" +
				"It is multiple lines, but it still has no marker\n" +
				"unfortunately...",
			wantErr:  true,
			wantKind: NoMarkerPattern,
		},
		{
			name:     "other headers only",
			text:     "# Hi!\n# Hello!\n# Usage\n# Overview",
			wantErr:  true,
			wantKind: NoMarkerPattern,
		},
		{
			name: "wrong header with bullets",
			text: "# Usage\n" +
				" - nn: the pointer must be non-null\n" +
				" - align: the pointer must be aligned",
			wantErr:  true,
			wantKind: NoMarkerPattern,
		},
		{
			name: "simplest use",
			text: "# Unsafe\n - nn: the pointer must be non-null",
			want: []pair{{"nn", "the pointer must be non-null"}},
		},
		{
			name: "many requirements",
			text: "# Unsafe\n" +
				" - nn: the pointer must be non-null\n" +
				" - align: the pointer must be aligned\n" +
				" - heap-allocated: the pointer must be heap-allocated",
			want: []pair{
				{"nn", "the pointer must be non-null"},
				{"align", "the pointer must be aligned"},
				{"heap-allocated", "the pointer must be heap-allocated"},
			},
		},
		{
			name: "ignores text before",
			text: "filler text, blah blah blah...\n" +
				"# Unsafe\n" +
				" - nn: the pointer must be non-null",
			want: []pair{{"nn", "the pointer must be non-null"}},
		},
		{
			name: "ignores other headers around the section",
			text: "# Overview\n" +
				" - this is a function of some kind\n" +
				"# Unsafe\n" +
				" - nn: the pointer must be non-null\n" +
				"# Usage\n" +
				" - use this however you'd like",
			want: []pair{{"nn", "the pointer must be non-null"}},
		},
		{
			name: "section ends at blank line",
			text: "# Unsafe\n" +
				" - nn: the pointer must be non-null\n" +
				"\n" +
				" - stray bullet after the section",
			want: []pair{{"nn", "the pointer must be non-null"}},
		},
		{
			name: "section ends at whitespace-only line",
			text: "# Unsafe\n" +
				" - nn: the pointer must be non-null\n" +
				"   \n" +
				" - stray bullet after the section",
			want: []pair{{"nn", "the pointer must be non-null"}},
		},
		{
			name: "marker is case-insensitive",
			text: "# UNSAFE\n - nn: the pointer must be non-null",
			want: []pair{{"nn", "the pointer must be non-null"}},
		},
		{
			name: "deeper heading depth",
			text: "## Unsafe\n - nn: the pointer must be non-null",
			want: []pair{{"nn", "the pointer must be non-null"}},
		},
		{
			name: "asterisk bullets allowed",
			text: "# Unsafe\n * nn: the pointer must be non-null\n * align: the pointer must be aligned",
			want: []pair{
				{"nn", "the pointer must be non-null"},
				{"align", "the pointer must be aligned"},
			},
		},
		{
			name:     "bullet styles must match",
			text:     "# Unsafe\n * nn: the pointer must be non-null\n - align: the pointer must be aligned",
			wantErr:  true,
			wantKind: NonMatchingBullets,
		},
		{
			name: "spaces after bullet ignored",
			text: "# Unsafe\n -  nn: the pointer must be non-null\n -   align: the pointer must be aligned",
			want: []pair{
				{"nn", "the pointer must be non-null"},
				{"align", "the pointer must be aligned"},
			},
		},
		{
			name:     "space before colon rejected",
			text:     "# Unsafe\n - nn : the pointer must be non-null",
			wantErr:  true,
			wantKind: InvalidConditionName,
		},
		{
			name:     "multi-word name rejected",
			text:     "# Unsafe\n - nn ptr: the pointer must be non-null",
			wantErr:  true,
			wantKind: InvalidConditionName,
		},
		{
			name:     "missing colon",
			text:     "# Unsafe\n - nn ptr",
			wantErr:  true,
			wantKind: NoColon,
		},
		{
			name:     "duplicate markers",
			text:     "# Unsafe\n - nn: x\n# Unsafe\n - align: y",
			wantErr:  true,
			wantKind: MultipleMarkerPatterns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, err := ParseSection(tt.text, testMarker)
			if tt.wantErr {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantKind, err.Kind)

				return
			}

			require.Nil(t, err)
			if diff := cmp.Diff(tt.want, pairsOf(sec), cmp.AllowUnexported(pair{})); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSectionNone(t *testing.T) {
	sec, err := ParseSection("# Unsafe\nnone", testMarker)
	require.Nil(t, err)
	assert.True(t, sec.None)
	assert.Empty(t, sec.Entries)
}

func TestParseSectionNoColonSuggestion(t *testing.T) {
	text := "# Unsafe\n - nn ptr"
	_, err := ParseSection(text, testMarker)
	require.NotNil(t, err)
	require.Equal(t, NoColon, err.Kind)

	// The bullet body is "nn ptr"; the suggested colon slot follows "nn".
	require.Len(t, err.Ranges, 1)
	assert.Equal(t, "nn ptr", text[err.Ranges[0].Lo:err.Ranges[0].Hi])
	assert.Equal(t, err.Ranges[0].Lo+len("nn"), err.InsertColonAt)
}

func TestParseSectionNameReasons(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantRaw    string
		wantReason condition.InvalidNameReason
	}{
		{
			name:       "trailing whitespace",
			text:       "# Unsafe\n - nn : x",
			wantRaw:    "nn ",
			wantReason: condition.TrailingWhitespace,
		},
		{
			name:       "multiple words",
			text:       "# Unsafe\n - nn ptr: x",
			wantRaw:    "nn ptr",
			wantReason: condition.MultipleWords,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSection(tt.text, testMarker)
			require.NotNil(t, err)
			require.Equal(t, InvalidConditionName, err.Kind)
			assert.Equal(t, tt.wantRaw, err.Raw)
			assert.Equal(t, tt.wantReason, err.NameReason)
			assert.Equal(t, tt.wantRaw, tt.text[err.Ranges[0].Lo:err.Ranges[0].Hi])
		})
	}
}

func TestParseSectionDeterministic(t *testing.T) {
	text := "# Unsafe\n * a: x\n - b: y"

	_, first := ParseSection(text, testMarker)
	_, second := ParseSection(text, testMarker)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, NonMatchingBullets, first.Kind)
	assert.Equal(t, first.Ranges, second.Ranges)

	// Asterisk occurred first, so it leads the range list.
	assert.Equal(t, "*", text[first.Ranges[0].Lo:first.Ranges[0].Hi])
	assert.Equal(t, "-", text[first.Ranges[1].Lo:first.Ranges[1].Hi])
}

func TestParseSectionBulletRanges(t *testing.T) {
	text := "# Unsafe\n - nn: must be non-null"
	sec, err := ParseSection(text, testMarker)
	require.Nil(t, err)
	require.Len(t, sec.Entries, 1)
	assert.Equal(t, "nn: must be non-null", text[sec.Entries[0].Range.Lo:sec.Entries[0].Range.Hi])
}
