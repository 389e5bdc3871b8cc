package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/CrestNiraj12/molterm/domain"
)

// ErrUnchanged is returned when the user saved an empty draft or quit
// without changes.
var ErrUnchanged = errors.New("draft cancelled")

// EnvEditor prepares an external editor command using $EDITOR (fallback: "vi").
// It does NOT run the editor itself. Callers use tea.ExecProcess with the
// returned *exec.Cmd so Bubble Tea suspends raw terminal mode.
type EnvEditor struct{}

// NewEnvEditor creates an EnvEditor.
func NewEnvEditor() *EnvEditor {
	return &EnvEditor{}
}

const instructionComment = `<!--
molterm: write your post below.

- Keep the Submolt and Title lines, content goes under the --- line.
- Content that is only a URL is posted as a link.
- SAVE and EXIT to post (e.g., :wq in vi).
- Emptying the file or making NO CHANGES will cancel.
-->

`

const (
	submoltHeader = "Submolt:"
	titleHeader   = "Title:"
	bodySeparator = "---"
)

// FormatDraft renders a post draft as editor text, without instructions.
func FormatDraft(d domain.PostDraft) string {
	submolt := d.Submolt
	if submolt == "" {
		submolt = domain.DefaultSubmolt
	}
	return fmt.Sprintf("%s %s\n%s %s\n%s\n%s", submoltHeader, submolt, titleHeader, d.Title, bodySeparator, d.Content)
}

// ParseDraft reads editor text back into a draft. Header lines are matched
// case-insensitively; without a separator the whole text is content.
func ParseDraft(text string) domain.PostDraft {
	var d domain.PostDraft
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		trimmed := strings.TrimSpace(ln)
		switch {
		case trimmed == bodySeparator:
			d.Content = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			return d
		case hasHeader(trimmed, submoltHeader):
			d.Submolt = headerValue(trimmed, submoltHeader)
		case hasHeader(trimmed, titleHeader):
			d.Title = headerValue(trimmed, titleHeader)
		}
	}
	if d.Submolt == "" && d.Title == "" {
		d.Content = strings.TrimSpace(text)
	}
	return d
}

func hasHeader(line, header string) bool {
	return len(line) >= len(header) && strings.EqualFold(line[:len(header)], header)
}

func headerValue(line, header string) string {
	return strings.TrimSpace(line[len(header):])
}

// Cmd prepares an *exec.Cmd for the editor and a temp file path holding the
// instructions and the formatted draft.
func (e *EnvEditor) Cmd(d domain.PostDraft) (*exec.Cmd, string, error) {
	fields := strings.Fields(os.Getenv("EDITOR"))
	if len(fields) == 0 {
		fields = []string{"vi"}
	}

	tmpFile, err := os.CreateTemp("", "molterm-*.md")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer tmpFile.Close()

	if _, err := tmpFile.WriteString(instructionComment + FormatDraft(d)); err != nil {
		os.Remove(tmpPath)
		return nil, "", fmt.Errorf("writing to temp file: %w", err)
	}

	args := fields[1:]
	if base := filepath.Base(fields[0]); base == "vi" || base == "vim" || base == "nvim" {
		// Open at the end of the file, where the content goes.
		args = append(args, "+")
	}
	args = append(args, tmpPath)
	return exec.Command(fields[0], args...), tmpPath, nil
}

// ReadDraft reads the temp file, removes it and parses the draft. It returns
// ErrUnchanged when nothing was written or the draft matches before.
func (e *EnvEditor) ReadDraft(path string, before domain.PostDraft) (domain.PostDraft, error) {
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PostDraft{}, fmt.Errorf("reading temp file: %w", err)
	}

	content := string(data)
	if idx := strings.Index(content, "-->"); idx != -1 {
		content = content[idx+3:]
	}
	if strings.TrimSpace(content) == "" {
		return domain.PostDraft{}, ErrUnchanged
	}
	d := ParseDraft(content)
	if d == before || (d.Title == "" && d.Content == "") {
		return d, ErrUnchanged
	}
	return d, nil
}
