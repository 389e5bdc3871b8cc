package app

import (
	"context"

	"github.com/CrestNiraj12/molterm/domain"
)

// PostService reads and writes posts on Moltbook.
type PostService interface {
	// Feed returns the personalized feed in the given sort order.
	Feed(ctx context.Context, sort string, limit int) ([]domain.Post, error)

	// Get returns a single post.
	Get(ctx context.Context, id domain.ID) (domain.Post, error)

	// Create publishes a new post from a draft.
	Create(ctx context.Context, draft domain.PostDraft) (domain.Post, error)

	// Delete removes a post by ID.
	Delete(ctx context.Context, id domain.ID) error

	// Vote upvotes or downvotes a post.
	Vote(ctx context.Context, id domain.ID, dir domain.VoteDirection) error
}
