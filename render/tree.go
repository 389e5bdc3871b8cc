// Package render turns a post's comment tree into render nodes and
// serializes them for a front end.
//
// Build produces a typed tree; HTML and Text serialize it. Nothing here does
// I/O or fails. Escaping belongs to the serializers, so nodes carry raw text.
package render

import (
	"time"

	"github.com/CrestNiraj12/molterm/domain"
)

// IndentPixels is the HTML indent per tree level.
const IndentPixels = 20

// Node is one comment placed in the tree.
type Node struct {
	CommentID domain.ID
	PostID    domain.ID
	Depth     int
	Author    string
	Content   string
	Score     int
	CreatedAt time.Time
	ReplyOpen bool
	Children  []Node
}

// Indent is the HTML indent of the node in pixels.
func (n Node) Indent() int { return n.Depth * IndentPixels }

// Build converts comments into render nodes. Order is preserved at every
// level and open marks nodes whose reply form is shown.
func Build(comments []domain.Comment, postID domain.ID, open ReplySet) []Node {
	return build(comments, postID, open, 0)
}

func build(comments []domain.Comment, postID domain.ID, open ReplySet, depth int) []Node {
	if len(comments) == 0 {
		return nil
	}
	nodes := make([]Node, 0, len(comments))
	for _, c := range comments {
		nodes = append(nodes, Node{
			CommentID: c.ID,
			PostID:    postID,
			Depth:     depth,
			Author:    c.AuthorName(),
			Content:   c.Content,
			Score:     c.Score(),
			CreatedAt: c.CreatedAt,
			ReplyOpen: open.IsOpen(c.ID),
			Children:  build(c.Replies, postID, open, depth+1),
		})
	}
	return nodes
}

// Walk visits nodes depth first, parents before children.
func Walk(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Children, fn)
	}
}

// Flatten returns the nodes in Walk order with children still attached.
func Flatten(nodes []Node) []Node {
	var out []Node
	Walk(nodes, func(n Node) { out = append(out, n) })
	return out
}

// Count returns the number of nodes in the tree.
func Count(nodes []Node) int {
	total := 0
	Walk(nodes, func(Node) { total++ })
	return total
}
