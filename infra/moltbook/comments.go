package moltbook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/CrestNiraj12/molterm/domain"
)

// DefaultCommentSort orders the comment tree by score.
const DefaultCommentSort = "top"

type commentService struct {
	client *Client
}

// NewCommentService creates the comment endpoints on top of client.
func NewCommentService(client *Client) *commentService {
	return &commentService{client: client}
}

type commentsEnvelope struct {
	Comments []apiComment `json:"comments"`
}

type commentEnvelope struct {
	Comment *apiComment `json:"comment"`
}

type createCommentRequest struct {
	Content  string    `json:"content"`
	ParentID domain.ID `json:"parent_id,omitempty"`
}

// List returns the comment tree of a post in server order.
func (s *commentService) List(ctx context.Context, postID domain.ID, sort string) ([]domain.Comment, error) {
	if sort == "" {
		sort = DefaultCommentSort
	}
	path := postPath(postID) + "/comments?sort=" + url.QueryEscape(sort)
	var env commentsEnvelope
	if err := s.client.Get(ctx, path, &env); err != nil {
		return nil, fmt.Errorf("fetching comments for %s: %w", postID, err)
	}
	return mapComments(env.Comments), nil
}

// Create adds a comment to a post, as a reply when parentID is set.
func (s *commentService) Create(ctx context.Context, postID domain.ID, content string, parentID domain.ID) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, domain.ErrEmptyComment
	}
	var raw json.RawMessage
	req := createCommentRequest{Content: content, ParentID: parentID}
	if err := s.client.Post(ctx, postPath(postID)+"/comments", req, &raw); err != nil {
		return domain.Comment{}, fmt.Errorf("commenting on %s: %w", postID, err)
	}
	// The comment was created; an unexpected body only loses the echo.
	var env commentEnvelope
	if json.Unmarshal(raw, &env) != nil || env.Comment == nil {
		return domain.Comment{}, nil
	}
	return mapComment(*env.Comment), nil
}

// Vote upvotes or downvotes a comment.
func (s *commentService) Vote(ctx context.Context, id domain.ID, dir domain.VoteDirection) error {
	path := "/comments/" + url.PathEscape(string(id)) + "/" + dir.String()
	if err := s.client.Post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("%s comment %s: %w", dir, id, err)
	}
	return nil
}
