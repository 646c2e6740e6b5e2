package blog

import (
	"context"
	"fmt"

	"github.com/alberto-moreno-sa/notion-blog/internal/mapper"
	"github.com/alberto-moreno-sa/notion-blog/internal/model"
	"github.com/alberto-moreno-sa/notion-blog/internal/notion"
)

// DatabaseQuerier runs a query against a CMS database.
type DatabaseQuerier interface {
	QueryDatabase(ctx context.Context, databaseID string, q notion.DatabaseQuery) (*notion.PageList, error)
}

// Resolver finds the entries of the blog database and projects them into
// metadata-only posts.
type Resolver struct {
	client     DatabaseQuerier
	databaseID string
	props      mapper.Properties
}

// NewResolver creates a Resolver for one database.
func NewResolver(client DatabaseQuerier, databaseID string, props mapper.Properties) *Resolver {
	return &Resolver{
		client:     client,
		databaseID: databaseID,
		props:      props,
	}
}

// Resolve returns the posts matching slug, with no contents attached.
//
// An empty slug lists every published entry, newest first. A non-empty slug
// matches that exact slug whether or not the entry is published, so drafts
// can be previewed by their address while staying off the listing.
func (r *Resolver) Resolve(ctx context.Context, slug string) ([]model.Post, error) {
	query := r.listingQuery()
	if slug != "" {
		query = r.slugQuery(slug)
	}

	result, err := r.client.QueryDatabase(ctx, r.databaseID, query)
	if err != nil {
		return nil, fmt.Errorf("query database: %w", err)
	}

	posts := make([]model.Post, 0, len(result.Results))
	for _, page := range result.Results {
		post := mapper.ToPost(page, r.props)
		if slug != "" && post.Slug != nil && *post.Slug != slug {
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *Resolver) listingQuery() notion.DatabaseQuery {
	return notion.DatabaseQuery{
		Filter: &notion.Filter{
			And: []notion.Filter{{
				Property: r.props.Published,
				Checkbox: &notion.CheckboxCondition{Equals: true},
			}},
		},
		Sorts: []notion.Sort{{
			Timestamp: "created_time",
			Direction: "descending",
		}},
	}
}

func (r *Resolver) slugQuery(slug string) notion.DatabaseQuery {
	return notion.DatabaseQuery{
		Filter: &notion.Filter{
			And: []notion.Filter{{
				Property: r.props.Slug,
				RichText: &notion.TextCondition{Equals: slug},
			}},
		},
	}
}
