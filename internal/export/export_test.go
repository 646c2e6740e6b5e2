package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/google/go-cmp/cmp"

	"github.com/alberto-moreno-sa/notion-blog/internal/model"
)

func TestWriteAll(t *testing.T) {
	created := time.Date(2024, 9, 2, 5, 36, 0, 0, time.UTC)
	posts := []model.Post{
		{
			ID:          "p1",
			Title:       model.String("Hello: a story"),
			Slug:        model.String("hello"),
			CreatedTime: &created,
			Contents: []model.Content{
				{Type: model.Heading2, Text: model.String("Intro")},
				{Type: model.Paragraph, Text: model.String("World")},
			},
		},
		{ID: "p2", Contents: []model.Content{}},
		{ID: "p3", Slug: model.String("hello"), Contents: []model.Content{}},
	}

	dir := t.TempDir()
	paths, err := WriteAll(dir, posts)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	want := []string{
		filepath.Join(dir, "hello.md"),
		filepath.Join(dir, "p2.md"),
		filepath.Join(dir, "p3.md"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}

	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var fm FrontMatter
	body, err := frontmatter.Parse(f, &fm)
	if err != nil {
		t.Fatalf("parse front matter: %v", err)
	}

	wantFM := FrontMatter{ID: "p1", Title: "Hello: a story", Slug: "hello", Created: "2024-09-02T05:36:00Z"}
	if diff := cmp.Diff(wantFM, fm); diff != "" {
		t.Errorf("front matter mismatch (-want +got):\n%s", diff)
	}
	if got := strings.TrimSpace(string(body)); got != "## Intro\n\nWorld" {
		t.Errorf("body = %q", got)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		post model.Post
		want string
	}{
		{model.Post{ID: "p1", Slug: model.String("ok")}, "ok.md"},
		{model.Post{ID: "p2"}, "p2.md"},
		{model.Post{ID: "p3", Slug: model.String("a/b")}, "p3.md"},
		{model.Post{ID: "p4", Slug: model.String("..")}, "p4.md"},
	}
	for _, tt := range tests {
		if got := FileName(tt.post); got != tt.want {
			t.Errorf("FileName(%s) = %q, want %q", tt.post.ID, got, tt.want)
		}
	}
}
