package blog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/alberto-moreno-sa/notion-blog/internal/model"
)

// ErrNotFound is returned by Single when no entry has the requested slug.
var ErrNotFound = errors.New("post not found")

// DefaultConcurrency caps simultaneous block fetches during a listing.
const DefaultConcurrency = 5

// Assembler combines resolved entries with their contents. It is the entry
// point for both the listing and the single post views.
type Assembler struct {
	resolver    *Resolver
	aggregator  *Aggregator
	concurrency int
}

// NewAssembler creates an Assembler. A concurrency below 1 uses DefaultConcurrency.
func NewAssembler(resolver *Resolver, aggregator *Aggregator, concurrency int) *Assembler {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Assembler{
		resolver:    resolver,
		aggregator:  aggregator,
		concurrency: concurrency,
	}
}

// Listing returns every published post, newest first, with contents attached.
// A failure fetching any post's contents fails the whole listing.
func (a *Assembler) Listing(ctx context.Context) ([]model.Post, error) {
	posts, err := a.resolver.Resolve(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("resolve posts: %w", err)
	}

	if err := a.hydrate(ctx, posts); err != nil {
		return nil, fmt.Errorf("fetch contents: %w", err)
	}
	return posts, nil
}

// Single returns the first post whose slug equals slug, published or not.
// It returns ErrNotFound when there is none.
func (a *Assembler) Single(ctx context.Context, slug string) (*model.Post, error) {
	if slug == "" {
		return nil, ErrNotFound
	}

	posts, err := a.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", slug, err)
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}

	post := posts[0]
	contents, err := a.aggregator.Contents(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch contents: %w", err)
	}
	post.Contents = contents
	return &post, nil
}

// Slugs returns the slugs of the published posts in listing order, skipping
// posts without one. Contents are not fetched.
func (a *Assembler) Slugs(ctx context.Context) ([]string, error) {
	posts, err := a.resolver.Resolve(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("resolve posts: %w", err)
	}

	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		if s := p.SlugOrEmpty(); s != "" {
			slugs = append(slugs, s)
		}
	}
	return slugs, nil
}

// hydrate fetches contents for all posts through a bounded pool and attaches
// them by post id, so posts keep their resolved order whatever order the
// fetches finish in. posts is only modified when every fetch succeeds.
func (a *Assembler) hydrate(parent context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	log.Printf("Fetching contents for %d posts...", len(posts))

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, a.concurrency)
		contents = make(map[string][]model.Content, len(posts))
		firstErr error
	)

	for _, post := range posts {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			c, err := a.aggregator.Contents(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			contents[id] = c
		}(post.ID)
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := parent.Err(); err != nil {
		return err
	}

	for i := range posts {
		posts[i].Contents = contents[posts[i].ID]
	}
	return nil
}
