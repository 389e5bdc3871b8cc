package web

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/infra/config"
	"github.com/CrestNiraj12/molterm/render"
)

// invalidKeyMessage matches the terminal client's wording.
const invalidKeyMessage = "Invalid API key. Please log in again."

// page renders a template with the values every page needs.
func (s *Server) page(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	b := current(c)
	data["AppName"] = domain.AppName
	data["UserLabel"] = b.session.UserLabel()
	data["Me"] = b.session.CurrentUserName()
	data["CurrentPath"] = c.Request.URL.Path
	if f := b.takeFlash(); f != nil {
		data["Flash"] = f
	}
	c.HTML(code, name, data)
}

// fail reports err. A rejected key logs the browser out; anything else
// renders the error page.
func (s *Server) fail(c *gin.Context, err error, fallback string) {
	if domain.IsAuthError(err) {
		s.forceLogout(c, invalidKeyMessage)
		return
	}
	s.page(c, http.StatusBadGateway, "error", gin.H{"Error": domain.UserMessage(err, fallback)})
}

func (s *Server) forceLogout(c *gin.Context, reason string) {
	b := current(c)
	if err := b.session.Logout(); err != nil {
		s.log.Error().Err(err).Msg("logout")
	}
	b.replies.Clear()
	cs := sessions.Default(c)
	cs.Delete(apiKeyKey)
	if err := cs.Save(); err != nil {
		s.log.Error().Err(err).Msg("saving session cookie")
	}
	b.notify(reason, true)
	c.Redirect(http.StatusFound, "/login")
}

// back redirects to the form's "next" field when it is a local path.
func back(c *gin.Context, fallback string) {
	next := c.PostForm("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = fallback
	}
	c.Redirect(http.StatusFound, next)
}

// --- Auth ---

func (s *Server) showLogin(c *gin.Context) {
	if current(c).session.HasKey() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	s.page(c, http.StatusOK, "login", nil)
}

func (s *Server) login(c *gin.Context) {
	b := current(c)
	key := strings.TrimSpace(c.PostForm("api_key"))
	if err := b.session.Login(key); err != nil {
		s.page(c, http.StatusBadRequest, "login", gin.H{"Error": domain.UserMessage(err, "")})
		return
	}

	agent, err := b.ctrl.Me(c.Request.Context())
	if err != nil {
		_ = b.session.Logout()
		msg := domain.UserMessage(err, "Failed to load user data")
		if domain.IsAuthError(err) {
			msg = invalidKeyMessage
		}
		s.page(c, http.StatusUnauthorized, "login", gin.H{"Error": msg})
		return
	}
	if err := b.session.SetAgent(agent); err != nil {
		s.log.Warn().Err(err).Msg("caching agent")
	}
	s.saveKey(c, key)
	b.notify("Logged in as "+agent.DisplayName(), false)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) register(c *gin.Context) {
	b := current(c)
	reg, err := b.ctrl.Register(c.Request.Context(), c.PostForm("name"), c.PostForm("description"))
	if err != nil {
		s.page(c, http.StatusBadRequest, "login", gin.H{"Error": domain.UserMessage(err, "Registration failed")})
		return
	}
	if err := b.session.Login(reg.APIKey); err != nil {
		s.page(c, http.StatusBadGateway, "login", gin.H{"Error": domain.UserMessage(err, "Registration failed")})
		return
	}
	if agent, err := b.ctrl.Me(c.Request.Context()); err == nil {
		_ = b.session.SetAgent(agent)
	}
	s.saveKey(c, reg.APIKey)
	s.page(c, http.StatusOK, "registered", gin.H{"Registration": reg})
}

func (s *Server) logout(c *gin.Context) {
	s.forceLogout(c, "")
}

func (s *Server) saveKey(c *gin.Context, key string) {
	cs := sessions.Default(c)
	cs.Set(apiKeyKey, key)
	if err := cs.Save(); err != nil {
		s.log.Error().Err(err).Msg("saving session cookie")
	}
}

// --- Views ---

func (s *Server) feed(c *gin.Context) {
	b := current(c)
	sort := c.DefaultQuery("sort", s.feedSort)
	if !config.ValidSort(sort) {
		sort = s.feedSort
	}
	res, err := b.ctrl.Dispatch(c.Request.Context(), app.Command{View: app.ViewFeed, Action: app.ActionLoad, Sort: sort})
	if err != nil {
		s.fail(c, err, "Failed to load feed")
		return
	}
	s.page(c, http.StatusOK, "feed", gin.H{
		"Posts":    res.Feed,
		"Sort":     sort,
		"Sorts":    config.FeedSorts,
		"Cooldown": b.session.Cooldowns().Label(cooldown.Post),
	})
}

func (s *Server) postDetail(c *gin.Context) {
	b := current(c)
	id := domain.ID(c.Param("id"))
	res, err := b.ctrl.Dispatch(c.Request.Context(), app.Command{View: app.ViewPostDetail, Action: app.ActionLoad, TargetID: id})
	if err != nil {
		s.fail(c, err, "Failed to load post")
		return
	}

	nodes := render.Build(res.Detail.Comments, id, *b.repliesFor(id))
	s.page(c, http.StatusOK, "post", gin.H{
		"Post":         res.Detail.Post,
		"Comments":     render.HTML(nodes, s.now()),
		"CommentCount": render.Count(nodes),
		"Cooldown":     b.session.Cooldowns().Label(cooldown.Comment),
	})
}

func (s *Server) profile(c *gin.Context) {
	b := current(c)
	res, err := b.ctrl.Dispatch(c.Request.Context(), app.Command{View: app.ViewProfile, Action: app.ActionLoad, Name: c.Param("name")})
	if err != nil {
		s.fail(c, err, "Failed to load profile")
		return
	}
	s.page(c, http.StatusOK, "profile", gin.H{"Profile": res.Profile})
}

// --- Actions ---

func (s *Server) submitComment(c *gin.Context) {
	b := current(c)
	postID := domain.ID(c.Param("id"))
	parent := domain.ID(strings.TrimSpace(c.PostForm("parent_id")))
	target := "/p/" + string(postID)

	if err := b.session.CheckSubmit(cooldown.Comment); err != nil {
		b.notify(err.Error(), true)
		c.Redirect(http.StatusFound, target)
		return
	}
	text := strings.TrimSpace(c.PostForm("content"))
	if text == "" {
		b.notify(domain.ErrEmptyComment.Error(), true)
		c.Redirect(http.StatusFound, target)
		return
	}

	_, err := b.ctrl.Dispatch(c.Request.Context(), app.Command{
		View:     app.ViewPostDetail,
		Action:   app.ActionSubmitComment,
		PostID:   postID,
		TargetID: parent,
		Text:     text,
	})
	if err != nil && domain.IsAuthError(err) {
		s.forceLogout(c, invalidKeyMessage)
		return
	}
	out := b.session.OnSubmitOutcome(cooldown.Comment, err)
	b.notify(out.Notice, out.IsError)
	if err == nil && parent != "" {
		b.repliesFor(postID).Close(parent)
	}
	c.Redirect(http.StatusFound, target)
}

func (s *Server) showSubmit(c *gin.Context) {
	b := current(c)
	s.page(c, http.StatusOK, "submit", gin.H{
		"Draft":    domain.PostDraft{Submolt: domain.DefaultSubmolt},
		"Cooldown": b.session.Cooldowns().Label(cooldown.Post),
	})
}

func (s *Server) submitPost(c *gin.Context) {
	b := current(c)
	draft := domain.PostDraft{
		Submolt: c.PostForm("submolt"),
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
	}
	again := func(code int, msg string) {
		s.page(c, code, "submit", gin.H{
			"Draft":    draft,
			"Error":    msg,
			"Cooldown": b.session.Cooldowns().Label(cooldown.Post),
		})
	}

	if err := b.session.CheckSubmit(cooldown.Post); err != nil {
		again(http.StatusTooManyRequests, err.Error())
		return
	}
	normalized, err := draft.Normalize()
	if err != nil {
		again(http.StatusBadRequest, domain.UserMessage(err, ""))
		return
	}

	_, err = b.ctrl.Dispatch(c.Request.Context(), app.Command{View: app.ViewFeed, Action: app.ActionSubmitPost, Draft: normalized})
	if err != nil && domain.IsAuthError(err) {
		s.forceLogout(c, invalidKeyMessage)
		return
	}
	out := b.session.OnSubmitOutcome(cooldown.Post, err)
	if err != nil {
		again(http.StatusBadGateway, out.Notice)
		return
	}
	b.notify(out.Notice, false)
	c.Redirect(http.StatusFound, "/?sort=new")
}

func (s *Server) votePost(action app.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		b := current(c)
		id := domain.ID(c.Param("id"))
		res, err := b.ctrl.Dispatch(c.Request.Context(), app.Command{View: app.ViewFeed, Action: action, TargetID: id})
		if s.actionFailed(c, err, "Vote failed") {
			return
		}
		b.notify(res.Notice, false)
		back(c, "/p/"+string(id))
	}
}

func (s *Server) voteComment(action app.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		b := current(c)
		postID := domain.ID(c.PostForm("post_id"))
		res, err := b.ctrl.Dispatch(c.Request.Context(), app.Command{
			View:     app.ViewPostDetail,
			Action:   action,
			TargetID: domain.ID(c.Param("id")),
			PostID:   postID,
		})
		if s.actionFailed(c, err, "Vote failed") {
			return
		}
		b.notify(res.Notice, false)
		if postID == "" {
			back(c, "/")
			return
		}
		c.Redirect(http.StatusFound, "/p/"+string(postID))
	}
}

func (s *Server) deletePost(c *gin.Context) {
	b := current(c)
	id := domain.ID(c.Param("id"))
	res, err := b.ctrl.Dispatch(c.Request.Context(), app.Command{View: app.ViewPostDetail, Action: app.ActionDeletePost, TargetID: id})
	if s.actionFailed(c, err, "Failed to delete post") {
		return
	}
	b.notify(res.Notice, false)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) toggleReply(c *gin.Context) {
	b := current(c)
	postID := domain.ID(c.Param("id"))
	cid := domain.ID(c.Param("cid"))
	b.repliesFor(postID).Toggle(cid)
	c.Redirect(http.StatusFound, "/p/"+string(postID)+"#reply-form-"+string(cid))
}

// actionFailed handles err from a vote or delete and reports whether the
// request is finished.
func (s *Server) actionFailed(c *gin.Context, err error, fallback string) bool {
	if err == nil {
		return false
	}
	if domain.IsAuthError(err) {
		s.forceLogout(c, invalidKeyMessage)
		return true
	}
	current(c).notify(domain.UserMessage(err, fallback), true)
	back(c, "/")
	return true
}
