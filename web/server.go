// Package web serves the feed as server-rendered HTML. Every browser gets
// its own API key, cooldowns and open reply forms.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/infra/auth"
)

const (
	cookieName     = "molterm_session"
	sidKey         = "sid"
	apiKeyKey      = "api_key"
	ctxSessionKey  = "browser_session"
	defaultMaxSess = 256
)

// Deps holds everything the server needs.
type Deps struct {
	// NewController builds a controller whose client authenticates with keys.
	NewController func(keys auth.KeyProvider) *app.Controller
	// Secret signs the session cookie.
	Secret      string
	FeedSort    string
	MaxSessions int
	Logger      zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the web front end.
type Server struct {
	engine   *gin.Engine
	sessions *sessionStore
	feedSort string
	log      zerolog.Logger
	now      func() time.Time
}

// NewServer wires the router. gin's mode is left to the caller.
func NewServer(d Deps) (*Server, error) {
	if d.NewController == nil {
		return nil, errors.New("web: NewController is required")
	}
	if d.Secret == "" {
		return nil, errors.New("web: session secret is required")
	}
	if d.MaxSessions <= 0 {
		d.MaxSessions = defaultMaxSess
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.FeedSort == "" {
		d.FeedSort = "hot"
	}

	store, err := newSessionStore(d.MaxSessions, d.NewController, d.Now)
	if err != nil {
		return nil, fmt.Errorf("web: session cache: %w", err)
	}
	s := &Server{
		sessions: store,
		feedSort: d.FeedSort,
		log:      d.Logger.With().Str("component", "web").Logger(),
		now:      d.Now,
	}
	s.engine = s.routes([]byte(d.Secret))
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) routes(secret []byte) *gin.Engine {
	r := gin.New()
	r.Use(recoveryMiddleware(s.log))
	r.Use(loggingMiddleware(s.log))

	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cookieName, store))
	r.Use(s.attachSession())
	r.HTMLRender = loadTemplates(s.funcMap())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/login", s.showLogin)
	r.POST("/login", s.login)
	r.POST("/register", s.register)
	r.POST("/logout", s.logout)

	authorized := r.Group("/")
	authorized.Use(requireKey())
	{
		authorized.GET("/", s.feed)
		authorized.GET("/p/:id", s.postDetail)
		authorized.POST("/p/:id/comments", s.submitComment)
		authorized.POST("/p/:id/upvote", s.votePost(app.ActionUpvotePost))
		authorized.POST("/p/:id/downvote", s.votePost(app.ActionDownvotePost))
		authorized.POST("/p/:id/delete", s.deletePost)
		authorized.POST("/p/:id/replies/:cid/toggle", s.toggleReply)
		authorized.POST("/c/:id/upvote", s.voteComment(app.ActionUpvoteComment))
		authorized.POST("/c/:id/downvote", s.voteComment(app.ActionDownvoteComment))
		authorized.GET("/submit", s.showSubmit)
		authorized.POST("/submit", s.submitPost)
		authorized.GET("/me", s.profile)
		authorized.GET("/u/:name", s.profile)
	}
	return r
}

// attachSession resolves the browser session from the cookie and holds its
// lock for the rest of the request.
func (s *Server) attachSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		cs := sessions.Default(c)
		sid, _ := cs.Get(sidKey).(string)
		if sid == "" {
			sid = uuid.NewString()
			cs.Set(sidKey, sid)
			if err := cs.Save(); err != nil {
				s.log.Error().Err(err).Msg("saving session cookie")
			}
		}
		key, _ := cs.Get(apiKeyKey).(string)

		b := s.sessions.get(sid, key)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.syncKey(key)
		// A session rebuilt from the cookie has a key but no cached agent.
		if _, ok := b.session.Agent(); !ok && b.session.HasKey() {
			if agent, err := b.ctrl.Me(c.Request.Context()); err == nil {
				_ = b.session.SetAgent(agent)
			}
		}

		c.Set(ctxSessionKey, b)
		c.Next()
	}
}

func requireKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !current(c).session.HasKey() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func current(c *gin.Context) *browserSession {
	return c.MustGet(ctxSessionKey).(*browserSession)
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := log.Debug()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
