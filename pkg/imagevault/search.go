package imagevault

import (
	"context"
	"strings"
)

// DefaultSearchLimit is used when a search request carries no limit.
const DefaultSearchLimit = 20

// Search limit bounds.
const (
	MinSearchLimit = 1
	MaxSearchLimit = 100
)

// SearchImages runs the listing pipeline: pick the candidate source, apply
// the substring filters in memory, and truncate at the limit.
//
// Substring matching is done client-side because the repository index
// supports only exact and range lookups on its declared keys, not free-text
// search. The cost model follows from the source selection: owner-scoped
// queries are index-assisted and cheap, while the no-owner path pays a full
// O(corpus) enumeration before any filter runs.
func (s *service) SearchImages(ctx context.Context, req SearchImagesRequest) (*SearchImagesResult, error) {
	owner := strings.TrimSpace(req.OwnerID)
	nameFilter := strings.TrimSpace(req.FileNameFilter)
	descFilter := strings.TrimSpace(req.DescriptionFilter)

	limit := DefaultSearchLimit
	if req.Limit != nil {
		limit = *req.Limit
		if limit < MinSearchLimit || limit > MaxSearchLimit {
			return nil, &ValidationError{Field: "limit", Reason: "must be between 1 and 100"}
		}
	}

	// The owner query is fetched unfiltered: pushing the limit below the
	// filters could drop matches that a later candidate would have filled.
	var (
		candidates []*Image
		err        error
	)
	if owner != "" {
		candidates, err = s.repository.QueryByOwner(ctx, owner, 0)
	} else {
		candidates, err = s.repository.EnumerateAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	matches := make([]*Image, 0, limit)
	for _, image := range candidates {
		if !containsFold(image.FileName, nameFilter) {
			continue
		}
		if !containsFold(image.Description, descFilter) {
			continue
		}
		matches = append(matches, image)
		if len(matches) >= limit {
			break
		}
	}

	return &SearchImagesResult{Images: matches, Count: len(matches)}, nil
}

// containsFold reports whether value contains the filter case-insensitively.
// An empty filter matches everything.
func containsFold(value, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(filter))
}
