package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
)

// View is a screen of the client.
type View int

const (
	ViewFeed View = iota
	ViewProfile
	ViewPostDetail
)

func (v View) String() string {
	switch v {
	case ViewFeed:
		return "feed"
	case ViewProfile:
		return "profile"
	case ViewPostDetail:
		return "post-detail"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Action is a user intent inside a view.
type Action int

const (
	ActionLoad Action = iota
	ActionOpenPost
	ActionOpenProfile
	ActionUpvotePost
	ActionDownvotePost
	ActionDeletePost
	ActionUpvoteComment
	ActionDownvoteComment
	ActionSubmitComment
	ActionSubmitPost
)

var actionNames = map[Action]string{
	ActionLoad:            "load",
	ActionOpenPost:        "open-post",
	ActionOpenProfile:     "open-profile",
	ActionUpvotePost:      "upvote-post",
	ActionDownvotePost:    "downvote-post",
	ActionDeletePost:      "delete-post",
	ActionUpvoteComment:   "upvote-comment",
	ActionDownvoteComment: "downvote-comment",
	ActionSubmitComment:   "submit-comment",
	ActionSubmitPost:      "submit-post",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// CooldownKind reports which cooldown gates the action, if any.
func (a Action) CooldownKind() (cooldown.Kind, bool) {
	switch a {
	case ActionSubmitPost:
		return cooldown.Post, true
	case ActionSubmitComment:
		return cooldown.Comment, true
	default:
		return 0, false
	}
}

// Command is one dispatched user intent. Handlers read only the fields their
// action needs.
type Command struct {
	View   View
	Action Action
	// TargetID is the post or comment acted on. For ActionSubmitComment it
	// is the parent comment, empty for a top-level comment.
	TargetID domain.ID
	// PostID is the post a comment action belongs to.
	PostID domain.ID
	// Name is the agent for profile actions; empty means the caller.
	Name  string
	Text  string
	Draft domain.PostDraft
	Sort  string
}

// Detail is a post with its comment tree.
type Detail struct {
	Post     domain.Post
	Comments []domain.Comment
}

// Profile is an agent with its recent posts.
type Profile struct {
	Agent domain.Agent
	Posts []domain.Post
	Own   bool
}

// Result is what a handler produced. View is the view to show; Navigate is
// set when it differs from the command's view.
type Result struct {
	View     View
	Navigate bool
	Notice   string
	// Reload asks the front end to dispatch ActionLoad for View.
	Reload  bool
	Feed    []domain.Post
	Detail  *Detail
	Profile *Profile
}

// ErrUnsupported is returned for an action the view does not offer.
var ErrUnsupported = errors.New("action not available here")

// Handler performs the I/O for one (View, Action) pair. Handlers never touch
// session state; the front end applies results on its event loop.
type Handler func(ctx context.Context, cmd Command) (Result, error)

type route struct {
	view   View
	action Action
}

// Deps are the services the controller drives.
type Deps struct {
	Posts     PostService
	Comments  CommentService
	Agents    AgentService
	FeedSort  string
	FeedLimit int
	Logger    zerolog.Logger
}

// Controller maps (View, Action) pairs to handlers.
type Controller struct {
	posts     PostService
	comments  CommentService
	agents    AgentService
	feedSort  string
	feedLimit int
	log       zerolog.Logger
	routes    map[route]Handler
}

const commentSort = "top"

// NewController builds the dispatch table.
func NewController(d Deps) *Controller {
	c := &Controller{
		posts:     d.Posts,
		comments:  d.Comments,
		agents:    d.Agents,
		feedSort:  d.FeedSort,
		feedLimit: d.FeedLimit,
		log:       d.Logger.With().Str("component", "controller").Logger(),
		routes:    make(map[route]Handler),
	}
	if c.feedSort == "" {
		c.feedSort = "hot"
	}
	if c.feedLimit <= 0 {
		c.feedLimit = 25
	}

	c.handle(ViewFeed, ActionLoad, c.loadFeed)
	c.handle(ViewProfile, ActionLoad, c.loadProfile)
	c.handle(ViewPostDetail, ActionLoad, c.loadDetail)

	for _, v := range []View{ViewFeed, ViewProfile} {
		c.handle(v, ActionOpenPost, c.openPost)
		c.handle(v, ActionSubmitPost, c.submitPost)
	}
	for _, v := range []View{ViewFeed, ViewProfile, ViewPostDetail} {
		c.handle(v, ActionOpenProfile, c.openProfile)
		c.handle(v, ActionUpvotePost, c.votePost(domain.VoteUp))
		c.handle(v, ActionDownvotePost, c.votePost(domain.VoteDown))
		c.handle(v, ActionDeletePost, c.deletePost)
	}
	c.handle(ViewPostDetail, ActionUpvoteComment, c.voteComment(domain.VoteUp))
	c.handle(ViewPostDetail, ActionDownvoteComment, c.voteComment(domain.VoteDown))
	c.handle(ViewPostDetail, ActionSubmitComment, c.submitComment)
	return c
}

func (c *Controller) handle(v View, a Action, h Handler) {
	c.routes[route{v, a}] = h
}

// Supports reports whether the view offers the action.
func (c *Controller) Supports(v View, a Action) bool {
	_, ok := c.routes[route{v, a}]
	return ok
}

// Dispatch runs the handler for cmd.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	h, ok := c.routes[route{cmd.View, cmd.Action}]
	if !ok {
		return Result{View: cmd.View}, fmt.Errorf("%s in %s: %w", cmd.Action, cmd.View, ErrUnsupported)
	}
	log := c.log.With().Stringer("view", cmd.View).Stringer("action", cmd.Action).Str("target", string(cmd.TargetID)).Logger()
	log.Debug().Msg("dispatch")

	res, err := h(ctx, cmd)
	if err != nil {
		log.Warn().Err(err).Msg("dispatch failed")
		// A failed action never leaves the current view.
		return Result{View: cmd.View}, err
	}
	if res.View != cmd.View {
		res.Navigate = true
	}
	return res, nil
}

// Me fetches the authenticated agent; front ends call it after login.
func (c *Controller) Me(ctx context.Context) (domain.Agent, error) {
	return c.agents.Me(ctx)
}

// Register creates a new agent.
func (c *Controller) Register(ctx context.Context, name, description string) (domain.Registration, error) {
	return c.agents.Register(ctx, name, description)
}

// Status returns the claim status of the authenticated agent.
func (c *Controller) Status(ctx context.Context) (string, error) {
	return c.agents.Status(ctx)
}

// Thread loads a post and its comment tree.
func (c *Controller) Thread(ctx context.Context, postID domain.ID) (Detail, error) {
	return c.fetchDetail(ctx, postID)
}

func (c *Controller) loadFeed(ctx context.Context, cmd Command) (Result, error) {
	sort := cmd.Sort
	if sort == "" {
		sort = c.feedSort
	}
	posts, err := c.posts.Feed(ctx, sort, c.feedLimit)
	if err != nil {
		return Result{View: ViewFeed}, err
	}
	return Result{View: ViewFeed, Feed: posts}, nil
}

func (c *Controller) loadProfile(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Name == "" {
		me, err := c.agents.Me(ctx)
		if err != nil {
			return Result{View: ViewProfile}, err
		}
		return Result{View: ViewProfile, Profile: &Profile{Agent: me, Own: true}}, nil
	}
	agent, posts, err := c.agents.Profile(ctx, cmd.Name)
	if err != nil {
		return Result{View: ViewProfile}, err
	}
	return Result{View: ViewProfile, Profile: &Profile{Agent: agent, Posts: posts}}, nil
}

func (c *Controller) openProfile(ctx context.Context, cmd Command) (Result, error) {
	cmd.View = ViewProfile
	return c.loadProfile(ctx, cmd)
}

func (c *Controller) fetchDetail(ctx context.Context, postID domain.ID) (Detail, error) {
	var d Detail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.posts.Get(gctx, postID)
		d.Post = p
		return err
	})
	g.Go(func() error {
		cs, err := c.comments.List(gctx, postID, commentSort)
		d.Comments = cs
		return err
	})
	if err := g.Wait(); err != nil {
		return Detail{}, err
	}
	return d, nil
}

func (c *Controller) loadDetail(ctx context.Context, cmd Command) (Result, error) {
	id := cmd.TargetID
	if id == "" {
		id = cmd.PostID
	}
	d, err := c.fetchDetail(ctx, id)
	if err != nil {
		return Result{View: ViewPostDetail}, err
	}
	return Result{View: ViewPostDetail, Detail: &d}, nil
}

func (c *Controller) openPost(ctx context.Context, cmd Command) (Result, error) {
	return c.loadDetail(ctx, cmd)
}

func voteNotice(dir domain.VoteDirection) string {
	if dir == domain.VoteDown {
		return "Downvoted!"
	}
	return "Upvoted!"
}

func (c *Controller) votePost(dir domain.VoteDirection) Handler {
	return func(ctx context.Context, cmd Command) (Result, error) {
		if err := c.posts.Vote(ctx, cmd.TargetID, dir); err != nil {
			return Result{View: cmd.View}, err
		}
		return Result{View: cmd.View, Notice: voteNotice(dir), Reload: true}, nil
	}
}

func (c *Controller) voteComment(dir domain.VoteDirection) Handler {
	return func(ctx context.Context, cmd Command) (Result, error) {
		if err := c.comments.Vote(ctx, cmd.TargetID, dir); err != nil {
			return Result{View: cmd.View}, err
		}
		return Result{View: cmd.View, Notice: voteNotice(dir), Reload: cmd.PostID != ""}, nil
	}
}

func (c *Controller) deletePost(ctx context.Context, cmd Command) (Result, error) {
	if err := c.posts.Delete(ctx, cmd.TargetID); err != nil {
		return Result{View: cmd.View}, err
	}
	view := cmd.View
	if view == ViewPostDetail {
		view = ViewFeed
	}
	return Result{View: view, Notice: "Post deleted", Reload: true}, nil
}

// submitComment and submitPost leave the notice to Session.OnSubmitOutcome.
func (c *Controller) submitComment(ctx context.Context, cmd Command) (Result, error) {
	if _, err := c.comments.Create(ctx, cmd.PostID, cmd.Text, cmd.TargetID); err != nil {
		return Result{View: cmd.View}, err
	}
	return Result{View: cmd.View, Reload: true}, nil
}

func (c *Controller) submitPost(ctx context.Context, cmd Command) (Result, error) {
	if _, err := c.posts.Create(ctx, cmd.Draft); err != nil {
		return Result{View: cmd.View}, err
	}
	return Result{View: cmd.View, Reload: true}, nil
}
