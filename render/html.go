package render

import (
	"html/template"
	"strings"
	"time"
)

var commentTemplates = template.Must(template.New("render").Parse(`
{{- define "comments"}}{{range .}}{{template "comment" .}}{{end}}{{end -}}
{{- define "comment"}}
<div class="comment" data-comment-id="{{.CommentID}}" style="margin-left: {{.Indent}}px">
  <div class="comment-body">
    <div class="comment-votes">
      <form method="post" action="/c/{{.CommentID}}/upvote" class="inline-form">
        <input type="hidden" name="post_id" value="{{.PostID}}">
        <button class="vote-btn vote-up" title="Upvote">▲</button>
      </form>
      <span class="vote-count">{{.Score}}</span>
      <form method="post" action="/c/{{.CommentID}}/downvote" class="inline-form">
        <input type="hidden" name="post_id" value="{{.PostID}}">
        <button class="vote-btn vote-down" title="Downvote">▼</button>
      </form>
    </div>
    <div class="comment-content">
      <div class="comment-meta">&gt; <a class="author-link" href="/u/{{.Author}}">{{.Author}}</a> | {{.Age}}</div>
      <p class="comment-text">{{.Content}}</p>
      <div class="comment-actions">
        <form method="post" action="/p/{{.PostID}}/replies/{{.CommentID}}/toggle" class="inline-form">
          <button class="reply-btn">reply</button>
        </form>
      </div>
      <div class="reply-form{{if not .ReplyOpen}} hidden{{end}}" id="reply-form-{{.CommentID}}">
        <form method="post" action="/p/{{.PostID}}/comments">
          <input type="hidden" name="parent_id" value="{{.CommentID}}">
          <textarea class="reply-input" name="content" rows="2" placeholder="&gt; Your reply..."></textarea>
          <button class="terminal-btn-small submit-reply-btn">Submit</button>
        </form>
        <form method="post" action="/p/{{.PostID}}/replies/{{.CommentID}}/toggle" class="inline-form">
          <button class="terminal-btn-small cancel-reply-btn">Cancel</button>
        </form>
      </div>
    </div>
  </div>
  {{- template "comments" .Replies}}
</div>
{{- end}}`))

type htmlNode struct {
	Node
	Age     string
	Replies []htmlNode
}

func toHTMLNodes(nodes []Node, now time.Time) []htmlNode {
	out := make([]htmlNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, htmlNode{
			Node:    n,
			Age:     RelativeTime(n.CreatedAt, now),
			Replies: toHTMLNodes(n.Children, now),
		})
	}
	return out
}

// HTML serializes the tree as nested comment markup. All text fields are
// escaped for their HTML context.
func HTML(nodes []Node, now time.Time) template.HTML {
	var b strings.Builder
	// Execution only fails on writer errors, which strings.Builder never returns.
	_ = commentTemplates.ExecuteTemplate(&b, "comments", toHTMLNodes(nodes, now))
	return template.HTML(b.String())
}
