// Package search maintains a full-text index of posted messages for the
// SEARCH verb. The index lives purely in memory: the board itself does not
// persist across restarts, so neither does its index.
package search

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/blugelabs/bluge"

	"bboard/domain"
)

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndex(log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer, log: log}, nil
}

// Add indexes one message under its group. The message id doubles as the
// document id; messages are immutable so a document is never rewritten.
func (i *Index) Add(groupID int, m domain.Message) error {
	doc := bluge.NewDocument(strconv.Itoa(m.ID)).
		AddField(bluge.NewTextField("subject", m.Subject)).
		AddField(bluge.NewTextField("content", m.Content)).
		AddField(bluge.NewKeywordField("group", strconv.Itoa(groupID)))
	return i.writer.Update(doc.ID(), doc)
}

// Query returns the ids of up to limit messages in the given group whose
// subject or content matches terms, best match first.
func (i *Index) Query(ctx context.Context, groupID int, terms string, limit int) ([]int, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			i.log.Warn("Failed to close index reader", "error", cerr)
		}
	}()

	text := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(terms).SetField("subject")).
		AddShould(bluge.NewMatchQuery(terms).SetField("content"))
	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(strconv.Itoa(groupID)).SetField("group")).
		AddMust(text)

	it, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []int
	for {
		match, err := it.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, convErr := strconv.Atoi(string(value)); convErr == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}
