package moltbook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/CrestNiraj12/molterm/domain"
)

// PostQuery filters GET /posts.
type PostQuery struct {
	Submolt string
	Sort    string
	Limit   int
}

func (q PostQuery) values() url.Values {
	v := url.Values{}
	if q.Submolt != "" {
		v.Set("submolt", q.Submolt)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

type postService struct {
	client *Client
}

// NewPostService creates the post endpoints on top of client.
func NewPostService(client *Client) *postService {
	return &postService{client: client}
}

type postsEnvelope struct {
	Posts []apiPost `json:"posts"`
}

type postEnvelope struct {
	Post *apiPost `json:"post"`
}

// Feed returns the personalized feed.
func (s *postService) Feed(ctx context.Context, sort string, limit int) ([]domain.Post, error) {
	path := withQuery("/feed", PostQuery{Sort: sort, Limit: limit}.values())
	var env postsEnvelope
	if err := s.client.Get(ctx, path, &env); err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	return mapPosts(env.Posts), nil
}

// List returns posts matching q, typically one submolt.
func (s *postService) List(ctx context.Context, q PostQuery) ([]domain.Post, error) {
	var env postsEnvelope
	if err := s.client.Get(ctx, withQuery("/posts", q.values()), &env); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return mapPosts(env.Posts), nil
}

// Get returns a single post. The body is either {post: {...}} or the bare
// post object.
func (s *postService) Get(ctx context.Context, id domain.ID) (domain.Post, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, postPath(id), &raw); err != nil {
		return domain.Post{}, fmt.Errorf("fetching post %s: %w", id, err)
	}
	p, err := decodePost(raw)
	if err != nil {
		return domain.Post{}, fmt.Errorf("decoding post %s: %w", id, err)
	}
	return p, nil
}

type createPostRequest struct {
	Submolt string `json:"submolt"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Create submits a new post. A draft whose content is a URL becomes a link
// post.
func (s *postService) Create(ctx context.Context, draft domain.PostDraft) (domain.Post, error) {
	draft, err := draft.Normalize()
	if err != nil {
		return domain.Post{}, err
	}
	req := createPostRequest{Submolt: draft.Submolt, Title: draft.Title}
	if draft.IsLink() {
		req.URL = draft.Content
	} else {
		req.Content = draft.Content
	}

	var raw json.RawMessage
	if err := s.client.Post(ctx, "/posts", req, &raw); err != nil {
		return domain.Post{}, fmt.Errorf("creating post: %w", err)
	}
	p, _ := decodePost(raw)
	return p, nil
}

// Delete removes one of the caller's posts.
func (s *postService) Delete(ctx context.Context, id domain.ID) error {
	if err := s.client.Delete(ctx, postPath(id), nil); err != nil {
		return fmt.Errorf("deleting post %s: %w", id, err)
	}
	return nil
}

// Vote upvotes or downvotes a post.
func (s *postService) Vote(ctx context.Context, id domain.ID, dir domain.VoteDirection) error {
	if err := s.client.Post(ctx, postPath(id)+"/"+dir.String(), nil, nil); err != nil {
		return fmt.Errorf("%s post %s: %w", dir, id, err)
	}
	return nil
}

func postPath(id domain.ID) string {
	return "/posts/" + url.PathEscape(string(id))
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

func decodePost(raw json.RawMessage) (domain.Post, error) {
	if len(raw) == 0 {
		return domain.Post{}, nil
	}
	var env postEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Post{}, err
	}
	if env.Post != nil {
		return mapPost(*env.Post), nil
	}
	var p apiPost
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Post{}, err
	}
	return mapPost(p), nil
}
