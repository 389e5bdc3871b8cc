package app

import (
	"os/exec"

	"github.com/CrestNiraj12/molterm/domain"
)

// DraftEditor edits a post draft in an external program.
// Implemented by infrastructure (EnvEditor spawning $EDITOR). The command is
// returned unstarted so the TUI can hand the terminal over while it runs.
type DraftEditor interface {
	Cmd(d domain.PostDraft) (*exec.Cmd, string, error)
	ReadDraft(path string, before domain.PostDraft) (domain.PostDraft, error)
}
