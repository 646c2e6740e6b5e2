package blog

import (
	"context"
	"strings"
	"sync"

	"github.com/alberto-moreno-sa/notion-blog/internal/mapper"
	"github.com/alberto-moreno-sa/notion-blog/internal/notion"
)

const (
	id1 = "11111111-1111-4111-8111-111111111111"
	id2 = "22222222-2222-4222-8222-222222222222"
	id3 = "33333333-3333-4333-8333-333333333333"
	id4 = "44444444-4444-4444-8444-444444444444"
)

// fakeCMS serves pages and blocks from memory and applies the two filters the
// resolver sends the way the CMS does.
type fakeCMS struct {
	mu sync.Mutex

	pages    []notion.Page
	blocks   map[string][]notion.Block
	blockErr map[string]error
	queryErr error

	// prefixMatch makes the slug filter sloppy, to check the local re-check.
	prefixMatch bool

	// gates, when set for an id, hold its block listing until closed.
	gates    map[string]chan struct{}
	started  chan string
	finished chan string

	queries  []notion.DatabaseQuery
	inFlight int
	maxSeen  int
}

func newFakeCMS(pages ...notion.Page) *fakeCMS {
	return &fakeCMS{
		pages:    pages,
		blocks:   map[string][]notion.Block{},
		blockErr: map[string]error{},
	}
}

func (f *fakeCMS) QueryDatabase(ctx context.Context, databaseID string, q notion.DatabaseQuery) (*notion.PageList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	cond := q.Filter.And[0]
	var out []notion.Page
	for _, p := range f.pages {
		if p.Properties == nil {
			if cond.Checkbox != nil {
				out = append(out, p)
			}
			continue
		}
		switch {
		case cond.Checkbox != nil:
			if cb := p.Properties[cond.Property].Checkbox; cb != nil && *cb == cond.Checkbox.Equals {
				out = append(out, p)
			}
		case cond.RichText != nil:
			rt := p.Properties[cond.Property].RichText
			if len(rt) == 0 {
				continue
			}
			slug := rt[0].PlainText
			if slug == cond.RichText.Equals || (f.prefixMatch && strings.HasPrefix(slug, cond.RichText.Equals)) {
				out = append(out, p)
			}
		}
	}
	return &notion.PageList{Object: "list", Results: out}, nil
}

func (f *fakeCMS) ListBlockChildren(ctx context.Context, blockID string) (*notion.BlockList, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	gate := f.gates[blockID]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
		if f.finished != nil {
			f.finished <- blockID
		}
	}()

	if f.started != nil {
		f.started <- blockID
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.blockErr[blockID]; err != nil {
		return nil, err
	}
	return &notion.BlockList{Object: "list", Results: f.blocks[blockID]}, nil
}

func page(id, title, slug string, published bool) notion.Page {
	return notion.Page{
		Object:         "page",
		ID:             id,
		CreatedTime:    "2024-09-02T05:36:00.000Z",
		LastEditedTime: "2024-09-02T05:36:00.000Z",
		Properties: map[string]notion.Property{
			"Name":      {Type: "title", Title: []notion.RichText{{Type: "text", PlainText: title}}},
			"Slug":      {Type: "rich_text", RichText: []notion.RichText{{Type: "text", PlainText: slug}}},
			"Published": {Type: "checkbox", Checkbox: &published},
		},
	}
}

func paragraph(text string) notion.Block {
	return notion.Block{
		Object:    "block",
		Type:      "paragraph",
		Paragraph: &notion.TextBlock{RichText: []notion.RichText{{Type: "text", PlainText: text}}},
	}
}

func newTestAssembler(cms *fakeCMS, concurrency int) *Assembler {
	return NewAssembler(
		NewResolver(cms, "db", mapper.DefaultProperties),
		NewAggregator(cms),
		concurrency,
	)
}
