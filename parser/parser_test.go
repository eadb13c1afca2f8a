package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtrefon/blt/tokenizer"
)

func TestParseMerges(t *testing.T) {
	input := `97 98
99 100
# this is a comment

101 102
`

	merges, err := ParseMerges(strings.NewReader(input))
	require.NoError(t, err)

	want := tokenizer.Merges{
		{Left: 97, Right: 98}:   256,
		{Left: 99, Right: 100}:  257,
		{Left: 101, Right: 102}: 258,
	}
	assert.Equal(t, want, merges)
}

func TestParseMergesEmpty(t *testing.T) {
	for _, input := range []string{"", "# only a comment\n", "\n\n# c\n\n"} {
		merges, err := ParseMerges(strings.NewReader(input))
		require.NoError(t, err)
		assert.Empty(t, merges)
	}
}

func TestParseMergesDuplicatePairConsumesID(t *testing.T) {
	input := "1 2\n3 4\n1 2\n5 6\n"

	merges, err := ParseMerges(strings.NewReader(input))
	require.NoError(t, err)

	// the duplicate overwrites (1,2) but still burns id 258
	want := tokenizer.Merges{
		{Left: 1, Right: 2}: 258,
		{Left: 3, Right: 4}: 257,
		{Left: 5, Right: 6}: 259,
	}
	assert.Equal(t, want, merges)
}

func TestParseMergesMalformed(t *testing.T) {
	cases := map[string]string{
		"one field":     "97\n",
		"three fields":  "97 98 99\n",
		"not a number":  "97 abc\n",
		"out of range":  "256 98\n",
		"negative":      "-1 98\n",
		"trailing junk": "97 98x\n",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMerges(strings.NewReader(input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestLoadMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merges.txt")
	require.NoError(t, os.WriteFile(path, []byte("97 98\n"), 0o644))

	merges, err := LoadMerges(path)
	require.NoError(t, err)
	assert.Equal(t, tokenizer.Merges{{Left: 97, Right: 98}: 256}, merges)

	_, err = LoadMerges(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
