package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/alberto-moreno-sa/notion-blog/internal/model"
	"github.com/alberto-moreno-sa/notion-blog/internal/render"
)

// FrontMatter is the YAML header of an exported post.
type FrontMatter struct {
	ID         string `yaml:"id"`
	Title      string `yaml:"title,omitempty"`
	Slug       string `yaml:"slug,omitempty"`
	Created    string `yaml:"created,omitempty"`
	LastEdited string `yaml:"lastEdited,omitempty"`
}

// Document renders a post as Markdown with a YAML front matter block.
func Document(p model.Post) ([]byte, error) {
	fm := FrontMatter{
		ID:         p.ID,
		Title:      p.TitleOrEmpty(),
		Slug:       p.SlugOrEmpty(),
		Created:    formatTime(p.CreatedTime),
		LastEdited: formatTime(p.LastEditedTime),
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(render.Markdown(p.Contents))
	return buf.Bytes(), nil
}

// WriteAll writes one file per post into dir and returns the paths written.
// Files are named after the slug, or the id for posts without a usable slug.
func WriteAll(dir string, posts []model.Post) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	used := make(map[string]bool, len(posts))
	paths := make([]string, 0, len(posts))
	for _, p := range posts {
		name := FileName(p)
		if used[name] {
			name = p.ID + ".md"
		}
		used[name] = true

		doc, err := Document(p)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", p.ID, err)
		}

		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, doc, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FileName is the export file name of a post.
func FileName(p model.Post) string {
	slug := p.SlugOrEmpty()
	if slug == "" || slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`+"\x00") {
		return p.ID + ".md"
	}
	return slug + ".md"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
