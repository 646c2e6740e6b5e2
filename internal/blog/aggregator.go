package blog

import (
	"context"
	"fmt"

	"github.com/alberto-moreno-sa/notion-blog/internal/mapper"
	"github.com/alberto-moreno-sa/notion-blog/internal/model"
	"github.com/alberto-moreno-sa/notion-blog/internal/notion"
)

// BlockLister lists the direct child blocks of a CMS page.
type BlockLister interface {
	ListBlockChildren(ctx context.Context, blockID string) (*notion.BlockList, error)
}

// Aggregator turns the child blocks of a post into its contents.
type Aggregator struct {
	client BlockLister
}

// NewAggregator creates an Aggregator.
func NewAggregator(client BlockLister) *Aggregator {
	return &Aggregator{client: client}
}

// Contents fetches the direct children of the post in one call and maps them
// in order. Nested children are not expanded and unsupported blocks are dropped.
func (a *Aggregator) Contents(ctx context.Context, postID string) ([]model.Content, error) {
	id, err := notion.NormalizeID(postID)
	if err != nil {
		return nil, fmt.Errorf("list blocks of %s: %w", postID, err)
	}

	blocks, err := a.client.ListBlockChildren(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list blocks of %s: %w", postID, err)
	}

	contents := make([]model.Content, 0, len(blocks.Results))
	for _, b := range blocks.Results {
		if c, ok := mapper.MapBlock(b); ok {
			contents = append(contents, c)
		}
	}
	return contents, nil
}
