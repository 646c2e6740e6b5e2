package model

import "time"

// ContentType is the tag of a normalized content block.
type ContentType string

const (
	Paragraph ContentType = "paragraph"
	Heading2  ContentType = "heading_2"
	Heading3  ContentType = "heading_3"
	Quote     ContentType = "quote"
	Code      ContentType = "code"
)

// Content is one normalized block of a post. Language is only set for code.
type Content struct {
	Type     ContentType `json:"type" yaml:"type"`
	Text     *string     `json:"text" yaml:"text"`
	Language *string     `json:"language,omitempty" yaml:"language,omitempty"`
}

// Post is one blog entry. Optional metadata is nil when the CMS did not provide it.
type Post struct {
	ID             string     `json:"id" yaml:"id"`
	Title          *string    `json:"title" yaml:"title"`
	Slug           *string    `json:"slug" yaml:"slug"`
	CreatedTime    *time.Time `json:"createdTs" yaml:"createdTs"`
	LastEditedTime *time.Time `json:"lastEditedTs" yaml:"lastEditedTs"`
	Contents       []Content  `json:"contents" yaml:"contents"`
}

// NewPost returns a metadata-only post with no contents yet.
func NewPost(id string) Post {
	return Post{ID: id, Contents: []Content{}}
}

// SlugOrEmpty returns the slug, or "" when the post has none.
func (p Post) SlugOrEmpty() string {
	if p.Slug == nil {
		return ""
	}
	return *p.Slug
}

// TitleOrEmpty returns the title, or "" when the post has none.
func (p Post) TitleOrEmpty() string {
	if p.Title == nil {
		return ""
	}
	return *p.Title
}

// String returns a pointer to s, for building optional fields.
func String(s string) *string {
	return &s
}
