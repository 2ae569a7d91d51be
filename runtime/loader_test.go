package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCensoredWords(t *testing.T) {
	req := require.New(t)

	data, err := LoadCensoredWords()
	req.NoError(err)
	req.NotEmpty(data.Words)
	req.Contains(data.Languages, "en")
	req.Contains(data.Languages, "fr")

	// Deduplication: no word appears twice
	seen := make(map[string]struct{})
	for _, w := range data.Words {
		_, dup := seen[w]
		req.False(dup, w)
		seen[w] = struct{}{}
	}
}
