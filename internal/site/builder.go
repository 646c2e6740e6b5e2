package site

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/alberto-moreno-sa/notion-blog/internal/model"
	"github.com/alberto-moreno-sa/notion-blog/internal/render"
)

// Source provides the hydrated listing.
type Source interface {
	Listing(ctx context.Context) ([]model.Post, error)
}

// Stats summarizes one build.
type Stats struct {
	Posts   int
	Pages   int
	Skipped int
}

// Builder writes the blog as static HTML.
type Builder struct {
	source    Source
	renderer  *render.Renderer
	outputDir string
}

// NewBuilder creates a Builder writing into outputDir.
func NewBuilder(source Source, renderer *render.Renderer, outputDir string) *Builder {
	return &Builder{
		source:    source,
		renderer:  renderer,
		outputDir: outputDir,
	}
}

// Build fetches the listing once and writes index.html, one
// post/{slug}/index.html per listed post with a slug, and 404.html.
// The output directory is only cleaned after the listing was fetched, so a
// failed fetch leaves the previous build in place.
func (b *Builder) Build(ctx context.Context) (*Stats, error) {
	posts, err := b.source.Listing(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing: %w", err)
	}
	log.Printf("Fetched %d posts", len(posts))

	if err := os.RemoveAll(b.outputDir); err != nil {
		return nil, fmt.Errorf("clean output dir: %w", err)
	}
	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	stats := &Stats{Posts: len(posts)}

	var buf bytes.Buffer
	if err := b.renderer.RenderListing(&buf, posts); err != nil {
		return nil, err
	}
	if err := b.write("index.html", buf.Bytes()); err != nil {
		return nil, err
	}
	stats.Pages++

	seen := make(map[string]bool, len(posts))
	for _, post := range posts {
		slug := post.SlugOrEmpty()
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		if !safeSegment(slug) {
			log.Printf("WARNING: slug %q of post %s cannot be used as a path, skipping", slug, post.ID)
			stats.Skipped++
			continue
		}

		buf.Reset()
		if err := b.renderer.RenderPost(&buf, post); err != nil {
			return nil, err
		}
		if err := b.write(filepath.Join("post", slug, "index.html"), buf.Bytes()); err != nil {
			return nil, err
		}
		stats.Pages++
	}

	buf.Reset()
	if err := b.renderer.RenderNotFound(&buf); err != nil {
		return nil, err
	}
	if err := b.write("404.html", buf.Bytes()); err != nil {
		return nil, err
	}
	stats.Pages++

	return stats, nil
}

func (b *Builder) write(rel string, data []byte) error {
	path := filepath.Join(b.outputDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// safeSegment reports whether slug can be used as a single directory name.
func safeSegment(slug string) bool {
	if slug == "." || slug == ".." {
		return false
	}
	return !strings.ContainsAny(slug, `/\`+"\x00")
}
