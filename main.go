package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/infra/auth"
	"github.com/CrestNiraj12/molterm/infra/config"
	"github.com/CrestNiraj12/molterm/infra/editor"
	"github.com/CrestNiraj12/molterm/infra/logging"
	"github.com/CrestNiraj12/molterm/infra/moltbook"
	"github.com/CrestNiraj12/molterm/render"
	"github.com/CrestNiraj12/molterm/tui"
	"github.com/CrestNiraj12/molterm/tui/login"
	"github.com/CrestNiraj12/molterm/web"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliMode int

const (
	cliRun cliMode = iota
	cliServe
	cliLogin
	cliLogout
	cliThread
	cliStatus
	cliVersion
	cliHelp
	cliInvalid
)

// parseCLIArgs returns the mode and its argument. For cliInvalid the string
// is the message to print.
func parseCLIArgs(args []string) (cliMode, string) {
	if len(args) == 0 {
		return cliRun, ""
	}

	switch args[0] {
	case "--version", "-version", "-v":
		return cliVersion, ""
	case "--help", "-h", "help":
		return cliHelp, ""
	case "serve":
		return cliServe, ""
	case "logout":
		return cliLogout, ""
	case "status":
		return cliStatus, ""
	case "login", "thread":
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return cliInvalid, fmt.Sprintf("%s: missing argument", args[0])
		}
		if args[0] == "login" {
			return cliLogin, strings.TrimSpace(args[1])
		}
		return cliThread, strings.TrimSpace(args[1])
	default:
		return cliInvalid, fmt.Sprintf("unexpected argument: %s", strings.Join(args, " "))
	}
}

func usage() string {
	return `Usage: molterm [command]

Commands:
  (none)            Open the terminal client
  serve             Serve the web view on MOLTBOOK_LISTEN
  login <api-key>   Verify and store an API key
  logout            Forget the stored key
  status            Show the claim status of the stored agent
  thread <post-id>  Print a post and its comments
  --version, -v     Print version information
  --help, -h        Show this help`
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

// newController wires the Moltbook services behind a controller.
func newController(client *moltbook.Client, cfg config.Config, log zerolog.Logger) *app.Controller {
	return app.NewController(app.Deps{
		Posts:     moltbook.NewPostService(client),
		Comments:  moltbook.NewCommentService(client),
		Agents:    moltbook.NewAgentService(client),
		FeedSort:  cfg.FeedSort,
		FeedLimit: cfg.FeedLimit,
		Logger:    log,
	})
}

func main() {
	mode, arg := parseCLIArgs(os.Args[1:])
	switch mode {
	case cliVersion:
		v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
		fmt.Printf("molterm %s\ncommit: %s\nbuilt: %s\n", v, c, d)
		return
	case cliHelp:
		fmt.Println(usage())
		return
	case cliInvalid:
		fmt.Fprintf(os.Stderr, "%s\n%s\n", arg, usage())
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mode == cliServe {
		err = runServe(ctx, cfg)
	} else {
		err = runLocal(ctx, mode, arg, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "molterm: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// runLocal handles every mode that uses the key stored on disk.
func runLocal(ctx context.Context, mode cliMode, arg string, cfg config.Config) error {
	log, closer, err := logging.NewFile(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	keys := auth.NewFileKeyStore(cfg.AuthDir)
	client := moltbook.NewClient(cfg.APIURL, keys, log)
	ctrl := newController(client, cfg, log)
	session := app.NewSession(keys, cooldown.New(nil))

	switch mode {
	case cliLogin:
		return runLogin(ctx, os.Stdout, ctrl, session, arg)
	case cliLogout:
		if err := session.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	case cliStatus:
		return runStatus(ctx, os.Stdout, ctrl, session)
	case cliThread:
		return runThread(ctx, os.Stdout, ctrl, domain.ID(arg), time.Now())
	}

	sort := cfg.FeedSort
	if st, err := config.LoadUIState(cfg.UIStatePath); err != nil {
		log.Warn().Err(err).Msg("ignoring ui state")
	} else if config.ValidSort(st.FeedSort) {
		sort = st.FeedSort
	}

	root := tui.NewApp(tui.Deps{
		Controller: ctrl,
		Session:    session,
		Editor:     editor.NewEnvEditor(),
		FeedSort:   sort,
		SaveSort: func(s string) error {
			return config.SaveUIState(cfg.UIStatePath, config.UIState{FeedSort: s})
		},
		Logger: log,
	})

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, cfg config.Config) error {
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if logging.ParseLevel(cfg.LogLevel) > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	base := moltbook.NewClient(cfg.APIURL, nil, log)
	srv, err := web.NewServer(web.Deps{
		NewController: func(keys auth.KeyProvider) *app.Controller {
			return newController(base.WithKeys(keys), cfg, log)
		},
		Secret:   cfg.SessionSecret,
		FeedSort: cfg.FeedSort,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx, cfg.ListenAddr)
}

// runLogin stores key once the API accepts it.
func runLogin(ctx context.Context, w io.Writer, ctrl *app.Controller, session *app.Session, key string) error {
	if err := session.Login(key); err != nil {
		return err
	}
	agent, err := ctrl.Me(ctx)
	if err != nil {
		if domain.IsAuthError(err) {
			_ = session.Logout()
			return errors.New(login.InvalidKeyMessage)
		}
		return errors.New(domain.UserMessage(err, "Failed to load user data"))
	}
	if err := session.SetAgent(agent); err != nil {
		return err
	}
	fmt.Fprintf(w, "Logged in as %s\n", session.UserLabel())
	return nil
}

func runStatus(ctx context.Context, w io.Writer, ctrl *app.Controller, session *app.Session) error {
	if !session.HasKey() {
		return domain.ErrNoAPIKey
	}
	status, err := ctrl.Status(ctx)
	if err != nil {
		return errors.New(domain.UserMessage(err, "Failed to load status"))
	}
	fmt.Fprintf(w, "%s\nstatus: %s\n", session.UserLabel(), status)
	return nil
}

// runThread prints a post and its comment tree as plain text.
func runThread(ctx context.Context, w io.Writer, ctrl *app.Controller, id domain.ID, now time.Time) error {
	d, err := ctrl.Thread(ctx, id)
	if err != nil {
		return errors.New(domain.UserMessage(err, "Failed to load post"))
	}
	p := d.Post
	fmt.Fprintf(w, "%s\n", render.StripControl(p.Title))
	fmt.Fprintf(w, "m/%s | %s | %s | %+d\n", p.SubmoltLabel(), render.StripControl(p.AuthorName()), render.RelativeTime(p.CreatedAt, now), p.Score())
	if p.URL != "" {
		fmt.Fprintln(w, p.URL)
	}
	if p.Content != "" {
		fmt.Fprintf(w, "\n%s\n", render.StripControl(p.Content))
	}

	nodes := render.Build(d.Comments, id, render.ReplySet{})
	fmt.Fprintf(w, "\nComments (%d)\n\n", render.Count(nodes))
	if len(nodes) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return nil
	}
	_, err = io.WriteString(w, render.Text(nodes, now))
	return err
}
