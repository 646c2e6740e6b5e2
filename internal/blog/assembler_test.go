package blog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alberto-moreno-sa/notion-blog/internal/model"
	"github.com/alberto-moreno-sa/notion-blog/internal/notion"
)

func TestListingHelloWorld(t *testing.T) {
	cms := newFakeCMS(page(id1, "Hello", "hello", true))
	cms.blocks[id1] = []notion.Block{
		paragraph("World"),
		{Object: "block", Type: "divider"},
	}

	posts, err := newTestAssembler(cms, 0).Listing(context.Background())
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}

	got := posts[0]
	if got.TitleOrEmpty() != "Hello" || got.SlugOrEmpty() != "hello" {
		t.Errorf("title %q slug %q", got.TitleOrEmpty(), got.SlugOrEmpty())
	}
	want := []model.Content{{Type: model.Paragraph, Text: model.String("World")}}
	if diff := cmp.Diff(want, got.Contents); diff != "" {
		t.Errorf("contents mismatch (-want +got):\n%s", diff)
	}
}

func TestListingKeepsResolverOrderWhenFetchesFinishOutOfOrder(t *testing.T) {
	cms := newFakeCMS(
		page(id1, "P1", "p1", true),
		page(id2, "P2", "p2", true),
		page(id3, "P3", "p3", true),
	)
	cms.blocks[id1] = []notion.Block{paragraph("one")}
	cms.blocks[id2] = []notion.Block{paragraph("two")}
	cms.blocks[id3] = []notion.Block{paragraph("three")}
	cms.gates = map[string]chan struct{}{
		id1: make(chan struct{}),
		id2: make(chan struct{}),
		id3: make(chan struct{}),
	}
	cms.started = make(chan string, 3)
	cms.finished = make(chan string, 3)

	type result struct {
		posts []model.Post
		err   error
	}
	done := make(chan result, 1)
	go func() {
		posts, err := newTestAssembler(cms, 5).Listing(context.Background())
		done <- result{posts, err}
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-cms.started:
		case <-time.After(5 * time.Second):
			t.Fatal("block fetches were not issued concurrently")
		}
	}

	for _, id := range []string{id3, id2, id1} {
		close(cms.gates[id])
		if got := <-cms.finished; got != id {
			t.Fatalf("finished %s, want %s", got, id)
		}
	}

	res := <-done
	if res.err != nil {
		t.Fatalf("Listing: %v", res.err)
	}

	var titles, texts []string
	for _, p := range res.posts {
		titles = append(titles, p.TitleOrEmpty())
		texts = append(texts, *p.Contents[0].Text)
	}
	if diff := cmp.Diff([]string{"P1", "P2", "P3"}, titles); diff != "" {
		t.Errorf("post order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"one", "two", "three"}, texts); diff != "" {
		t.Errorf("contents joined to the wrong post (-want +got):\n%s", diff)
	}
}

func TestListingBoundsConcurrency(t *testing.T) {
	ids := []string{id1, id2, id3, id4}
	var pages []notion.Page
	cms := newFakeCMS()
	cms.gates = map[string]chan struct{}{}
	cms.started = make(chan string, len(ids))
	for _, id := range ids {
		pages = append(pages, page(id, id, id, true))
		cms.gates[id] = make(chan struct{})
	}
	cms.pages = pages

	done := make(chan error, 1)
	go func() {
		_, err := newTestAssembler(cms, 2).Listing(context.Background())
		done <- err
	}()

	// Release fetches one at a time as they start.
	for range ids {
		started := <-cms.started
		close(cms.gates[started])
	}

	if err := <-done; err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if cms.maxSeen > 2 {
		t.Errorf("saw %d concurrent fetches, want at most 2", cms.maxSeen)
	}
}

func TestListingFailsWhenAnyFetchFails(t *testing.T) {
	errBoom := errors.New("rate limited")
	cms := newFakeCMS(
		page(id1, "P1", "p1", true),
		page(id2, "P2", "p2", true),
	)
	cms.blocks[id1] = []notion.Block{paragraph("one")}
	cms.blockErr[id2] = errBoom

	posts, err := newTestAssembler(cms, 0).Listing(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want %v", err, errBoom)
	}
	if posts != nil {
		t.Errorf("posts = %v, want nil on failure", posts)
	}
}

func TestListingPropagatesQueryError(t *testing.T) {
	apiErr := &notion.APIError{Status: 401, Code: "unauthorized", Message: "API token is invalid."}
	cms := newFakeCMS()
	cms.queryErr = apiErr

	_, err := newTestAssembler(cms, 0).Listing(context.Background())

	var got *notion.APIError
	if !errors.As(err, &got) || got.Code != "unauthorized" {
		t.Fatalf("err = %v, want unauthorized APIError", err)
	}
}

func TestListingExcludesUnpublished(t *testing.T) {
	cms := newFakeCMS(
		page(id1, "Live", "live", true),
		page(id2, "Draft", "draft", false),
	)

	posts, err := newTestAssembler(cms, 0).Listing(context.Background())
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if len(posts) != 1 || posts[0].SlugOrEmpty() != "live" {
		t.Fatalf("posts = %+v, want only the published post", posts)
	}
	if posts[0].Contents == nil {
		t.Error("contents should be an empty slice, not nil")
	}
}

func TestListingKeepsPartialPages(t *testing.T) {
	cms := newFakeCMS(notion.Page{Object: "page", ID: id1})

	posts, err := newTestAssembler(cms, 0).Listing(context.Background())
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	want := []model.Post{{ID: id1, Contents: []model.Content{}}}
	if diff := cmp.Diff(want, posts); diff != "" {
		t.Errorf("posts mismatch (-want +got):\n%s", diff)
	}
}

func TestSingleReachesUnpublishedPost(t *testing.T) {
	cms := newFakeCMS(page(id2, "Draft", "draft", false))
	cms.blocks[id2] = []notion.Block{paragraph("preview")}

	post, err := newTestAssembler(cms, 0).Single(context.Background(), "draft")
	if err != nil {
		t.Fatalf("Single: %v", err)
	}
	if post.TitleOrEmpty() != "Draft" || len(post.Contents) != 1 {
		t.Errorf("post = %+v", post)
	}

	q := cms.queries[0]
	if len(q.Filter.And) != 1 || q.Filter.And[0].Checkbox != nil {
		t.Errorf("slug query should not filter on the published flag: %+v", q.Filter)
	}
}

func TestSingleSlugIsExact(t *testing.T) {
	for _, prefix := range []bool{false, true} {
		cms := newFakeCMS(page(id1, "ABC", "abc", true))
		cms.prefixMatch = prefix
		a := newTestAssembler(cms, 0)

		for _, slug := range []string{"ab", "abcd", "ABC", ""} {
			if _, err := a.Single(context.Background(), slug); !errors.Is(err, ErrNotFound) {
				t.Errorf("prefixMatch=%v Single(%q) err = %v, want ErrNotFound", prefix, slug, err)
			}
		}
		if _, err := a.Single(context.Background(), "abc"); err != nil {
			t.Errorf("prefixMatch=%v Single(abc): %v", prefix, err)
		}
	}
}

func TestSingleTakesFirstMatch(t *testing.T) {
	cms := newFakeCMS(
		page(id1, "First", "dup", true),
		page(id2, "Second", "dup", true),
	)

	post, err := newTestAssembler(cms, 0).Single(context.Background(), "dup")
	if err != nil {
		t.Fatalf("Single: %v", err)
	}
	if post.ID != id1 {
		t.Errorf("got %s, want first match %s", post.ID, id1)
	}
}

func TestSingleNotFoundIsNotAPost(t *testing.T) {
	cms := newFakeCMS()

	post, err := newTestAssembler(cms, 0).Single(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if post != nil {
		t.Errorf("post = %+v, want nil", post)
	}
}

func TestSlugsSkipsPostsWithoutSlug(t *testing.T) {
	noSlug := page(id2, "No slug", "", true)
	delete(noSlug.Properties, "Slug")
	cms := newFakeCMS(
		page(id1, "One", "one", true),
		noSlug,
		page(id3, "Three", "three", true),
		page(id4, "Draft", "draft", false),
	)

	slugs, err := newTestAssembler(cms, 0).Slugs(context.Background())
	if err != nil {
		t.Fatalf("Slugs: %v", err)
	}
	if diff := cmp.Diff([]string{"one", "three"}, slugs); diff != "" {
		t.Errorf("slugs mismatch (-want +got):\n%s", diff)
	}
}
