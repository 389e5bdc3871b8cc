package web

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/infra/auth"
	"github.com/CrestNiraj12/molterm/render"
)

// flash is a one-shot notification shown on the next rendered page.
type flash struct {
	Text    string
	IsError bool
}

// browserSession is the state of one browser. mu is held for a whole
// request, so requests from the same browser run one at a time.
type browserSession struct {
	mu      sync.Mutex
	keys    *auth.MemoryKeyStore
	session *app.Session
	ctrl    *app.Controller
	// replies holds the open reply forms of replyPost.
	replies   render.ReplySet
	replyPost domain.ID
	flash     *flash
}

func (b *browserSession) notify(text string, isError bool) {
	if text == "" {
		return
	}
	b.flash = &flash{Text: text, IsError: isError}
}

func (b *browserSession) takeFlash() *flash {
	f := b.flash
	b.flash = nil
	return f
}

// repliesFor returns the reply set for postID, dropping forms left open on
// another post.
func (b *browserSession) repliesFor(postID domain.ID) *render.ReplySet {
	if b.replyPost != postID {
		b.replies.Clear()
		b.replyPost = postID
	}
	return &b.replies
}

// syncKey aligns the store with the key held in the cookie. The cookie wins:
// it survives restarts and LRU evictions, the in-memory store does not.
func (b *browserSession) syncKey(cookieKey string) {
	current, _ := b.keys.APIKey()
	switch {
	case cookieKey == current:
	case cookieKey == "":
		_ = b.session.Logout()
		b.replies.Clear()
	default:
		_ = b.session.Login(cookieKey)
	}
}

// sessionStore maps cookie session ids to browser sessions. Least recently
// used sessions are evicted past the size limit.
type sessionStore struct {
	mu            sync.Mutex
	cache         *lru.Cache[string, *browserSession]
	newController func(keys auth.KeyProvider) *app.Controller
	clock         cooldown.Clock
}

func newSessionStore(size int, newController func(auth.KeyProvider) *app.Controller, clock cooldown.Clock) (*sessionStore, error) {
	cache, err := lru.New[string, *browserSession](size)
	if err != nil {
		return nil, err
	}
	return &sessionStore{cache: cache, newController: newController, clock: clock}, nil
}

// get returns the session for sid, creating it seeded with key.
func (s *sessionStore) get(sid, key string) *browserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.cache.Get(sid); ok {
		return b
	}
	keys := auth.NewMemoryKeyStore(key)
	b := &browserSession{
		keys:    keys,
		session: app.NewSession(keys, cooldown.New(s.clock)),
		ctrl:    s.newController(keys),
	}
	s.cache.Add(sid, b)
	return b
}

func (s *sessionStore) len() int { return s.cache.Len() }
