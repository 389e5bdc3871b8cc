package app

import (
	"context"

	"github.com/CrestNiraj12/molterm/domain"
)

// CommentService reads and writes the comment tree of a post.
type CommentService interface {
	// List returns the top-level comments of a post with nested replies.
	List(ctx context.Context, postID domain.ID, sort string) ([]domain.Comment, error)

	// Create adds a comment, or a reply when parentID is non-empty.
	Create(ctx context.Context, postID domain.ID, content string, parentID domain.ID) (domain.Comment, error)

	// Vote upvotes or downvotes a comment.
	Vote(ctx context.Context, id domain.ID, dir domain.VoteDirection) error
}
