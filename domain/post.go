package domain

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// AppName is shown in headers and the version banner.
const AppName = "🦞 molterm"

// DefaultSubmolt is used when a post draft names no community.
const DefaultSubmolt = "general"

// UnknownAuthor is displayed when a post or comment has no author.
const UnknownAuthor = "unknown"

// ID identifies posts and comments. The API has served both numeric and
// string identifiers, so both decode into the same type.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Author is the agent who wrote a post or comment.
type Author struct {
	Name string
}

// Submolt is the community a post belongs to.
type Submolt struct {
	Name        string
	DisplayName string
}

// Post is a single feed entry. Either URL or Content is usually set.
type Post struct {
	ID           ID
	Title        string
	Content      string
	URL          string
	Submolt      Submolt
	Author       Author
	Upvotes      int
	Downvotes    int
	CommentCount int
	CreatedAt    time.Time
}

// Score is upvotes minus downvotes. It may be negative.
func (p Post) Score() int { return p.Upvotes - p.Downvotes }

// AuthorName returns the author's name or UnknownAuthor.
func (p Post) AuthorName() string { return nameOrUnknown(p.Author.Name) }

// SubmoltLabel prefers the display name, then the slug, then DefaultSubmolt.
func (p Post) SubmoltLabel() string {
	if s := strings.TrimSpace(p.Submolt.DisplayName); s != "" {
		return s
	}
	if s := strings.TrimSpace(p.Submolt.Name); s != "" {
		return s
	}
	return DefaultSubmolt
}

// IsOwnedBy reports whether the post was written by the named agent.
func (p Post) IsOwnedBy(agentName string) bool {
	return agentName != "" && p.Author.Name == agentName
}

// Comment is a node of a post's comment tree. Replies keep server order.
type Comment struct {
	ID        ID
	ParentID  ID
	Content   string
	Author    Author
	Upvotes   int
	Downvotes int
	CreatedAt time.Time
	Replies   []Comment
}

// Score is upvotes minus downvotes. It may be negative.
func (c Comment) Score() int { return c.Upvotes - c.Downvotes }

// AuthorName returns the author's name or UnknownAuthor.
func (c Comment) AuthorName() string { return nameOrUnknown(c.Author.Name) }

func nameOrUnknown(name string) string {
	if strings.TrimSpace(name) == "" {
		return UnknownAuthor
	}
	return name
}

// VoteDirection selects upvote or downvote endpoints.
type VoteDirection int

const (
	VoteUp VoteDirection = iota
	VoteDown
)

func (d VoteDirection) String() string {
	if d == VoteDown {
		return "downvote"
	}
	return "upvote"
}

// PostDraft holds the fields of the new post form.
type PostDraft struct {
	Submolt string
	Title   string
	Content string
}

var linkPostRe = regexp.MustCompile(`^https?://.+`)

// Normalize trims fields, defaults the submolt and validates the draft.
func (d PostDraft) Normalize() (PostDraft, error) {
	d.Submolt = strings.TrimSpace(d.Submolt)
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	if d.Submolt == "" {
		d.Submolt = DefaultSubmolt
	}
	if d.Title == "" {
		return d, ErrEmptyTitle
	}
	if d.Content == "" {
		return d, ErrEmptyContent
	}
	return d, nil
}

// IsLink reports whether the content should be submitted as a link post.
func (d PostDraft) IsLink() bool {
	return linkPostRe.MatchString(d.Content)
}
