package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bboard/domain"
	"bboard/internal"
)

func TestIndex_QueryIsScopedToGroup(t *testing.T) {
	req := require.New(t)
	log := internal.LoggerFromString("DEBUG")
	idx, err := NewIndex(log)
	req.NoError(err)
	defer idx.Close()

	now := time.Now()
	req.NoError(idx.Add(1, domain.NewMessage(1, "alice", "Release notes", "shipping friday", now)))
	req.NoError(idx.Add(1, domain.NewMessage(2, "bob", "Lunch", "pizza again", now)))
	req.NoError(idx.Add(2, domain.NewMessage(3, "carol", "Release planning", "next sprint", now)))

	// A match in group 1 never surfaces group 2's messages
	ids, err := idx.Query(context.Background(), 1, "release", 10)
	req.NoError(err)
	req.Equal([]int{1}, ids)

	ids, err = idx.Query(context.Background(), 2, "release", 10)
	req.NoError(err)
	req.Equal([]int{3}, ids)
}

func TestIndex_MatchesSubjectAndContent(t *testing.T) {
	req := require.New(t)
	idx, err := NewIndex(internal.LoggerFromString("DEBUG"))
	req.NoError(err)
	defer idx.Close()

	now := time.Now()
	req.NoError(idx.Add(1, domain.NewMessage(1, "alice", "Greetings", "hello there", now)))

	ids, err := idx.Query(context.Background(), 1, "greetings", 10)
	req.NoError(err)
	req.Len(ids, 1)

	ids, err = idx.Query(context.Background(), 1, "hello", 10)
	req.NoError(err)
	req.Len(ids, 1)

	ids, err = idx.Query(context.Background(), 1, "absent", 10)
	req.NoError(err)
	req.Empty(ids)
}
