package moltbook

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/render"
)

// apiAuthor is the embedded author object on posts and comments.
type apiAuthor struct {
	Name string `json:"name"`
}

// apiSubmolt decodes either a submolt object or a bare slug.
type apiSubmolt struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

func (s *apiSubmolt) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &s.Name)
	}
	type plain apiSubmolt
	return json.Unmarshal(b, (*plain)(s))
}

type apiPost struct {
	ID           domain.ID   `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	URL          string      `json:"url"`
	Submolt      *apiSubmolt `json:"submolt"`
	Author       *apiAuthor  `json:"author"`
	Upvotes      int         `json:"upvotes"`
	Downvotes    int         `json:"downvotes"`
	CommentCount int         `json:"comment_count"`
	CreatedAt    string      `json:"created_at"`
}

type apiComment struct {
	ID        domain.ID    `json:"id"`
	ParentID  domain.ID    `json:"parent_id"`
	Content   string       `json:"content"`
	Author    *apiAuthor   `json:"author"`
	Upvotes   int          `json:"upvotes"`
	Downvotes int          `json:"downvotes"`
	CreatedAt string       `json:"created_at"`
	Replies   []apiComment `json:"replies"`
}

type apiOwner struct {
	XHandle    string `json:"x_handle"`
	XHandleAlt string `json:"xHandle"`
	XName      string `json:"x_name"`
	XNameAlt   string `json:"xName"`
}

type apiAgent struct {
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	Karma       int       `json:"karma"`
	IsClaimed   bool      `json:"is_claimed"`
	CreatedAt   string    `json:"created_at"`
	Owner       *apiOwner `json:"owner"`
}

type apiRegistration struct {
	APIKey              string `json:"api_key"`
	APIKeyAlt           string `json:"apiKey"`
	ClaimURL            string `json:"claim_url"`
	ClaimURLAlt         string `json:"claimUrl"`
	VerificationCode    string `json:"verification_code"`
	VerificationCodeAlt string `json:"verificationCode"`
}

func clean(s string) string {
	return strings.TrimSpace(render.StripControl(s))
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func mapPost(p apiPost) domain.Post {
	post := domain.Post{
		ID:           p.ID,
		Title:        clean(p.Title),
		Content:      render.StripControl(p.Content),
		URL:          clean(p.URL),
		Upvotes:      p.Upvotes,
		Downvotes:    p.Downvotes,
		CommentCount: p.CommentCount,
		CreatedAt:    parseTime(p.CreatedAt),
	}
	if p.Submolt != nil {
		post.Submolt = domain.Submolt{Name: clean(p.Submolt.Name), DisplayName: clean(p.Submolt.DisplayName)}
	}
	if p.Author != nil {
		post.Author = domain.Author{Name: clean(p.Author.Name)}
	}
	return post
}

func mapPosts(in []apiPost) []domain.Post {
	out := make([]domain.Post, 0, len(in))
	for _, p := range in {
		out = append(out, mapPost(p))
	}
	return out
}

func mapComment(c apiComment) domain.Comment {
	comment := domain.Comment{
		ID:        c.ID,
		ParentID:  c.ParentID,
		Content:   render.StripControl(c.Content),
		Upvotes:   c.Upvotes,
		Downvotes: c.Downvotes,
		CreatedAt: parseTime(c.CreatedAt),
		Replies:   mapComments(c.Replies),
	}
	if c.Author != nil {
		comment.Author = domain.Author{Name: clean(c.Author.Name)}
	}
	return comment
}

func mapComments(in []apiComment) []domain.Comment {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Comment, 0, len(in))
	for _, c := range in {
		out = append(out, mapComment(c))
	}
	return out
}

func mapAgent(a apiAgent) domain.Agent {
	agent := domain.Agent{
		Name:        clean(firstNonEmpty(a.Name, a.Username)),
		Description: render.StripControl(a.Description),
		Karma:       a.Karma,
		IsClaimed:   a.IsClaimed,
		CreatedAt:   parseTime(a.CreatedAt),
	}
	if a.Owner != nil {
		agent.Owner = domain.Owner{
			XHandle: clean(firstNonEmpty(a.Owner.XHandle, a.Owner.XHandleAlt)),
			XName:   clean(firstNonEmpty(a.Owner.XName, a.Owner.XNameAlt)),
		}
	}
	return agent
}

func mapRegistration(r apiRegistration) domain.Registration {
	return domain.Registration{
		APIKey:           firstNonEmpty(r.APIKey, r.APIKeyAlt),
		ClaimURL:         firstNonEmpty(r.ClaimURL, r.ClaimURLAlt),
		VerificationCode: firstNonEmpty(r.VerificationCode, r.VerificationCodeAlt),
	}
}
