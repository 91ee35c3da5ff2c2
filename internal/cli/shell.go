// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// shell.go - Line-mode interactive comparison shell.
//
// The shell drives one comparison session through its states:
//
//	left REF         Select and load the left document
//	right REF        Select and load the right document
//	compare          Align the two documents
//	next, n          Move to the next change
//	prev, p          Move to the previous change
//	show             Print the side-by-side view
//	summary          Print added/removed/unchanged counts
//	status           Print the session state
//	devices          List catalog devices
//	help             Show commands
//	quit, exit       Leave the shell

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/confdiff/internal/config"
	"github.com/jeranaias/confdiff/internal/diff"
	"github.com/jeranaias/confdiff/internal/session"
	"github.com/jeranaias/confdiff/internal/ui/components"
	"github.com/jeranaias/confdiff/internal/ui/styles"
)

const shellPrompt = "confdiff> "

var shellCommands = []string{
	"left", "right", "compare", "next", "prev", "show",
	"summary", "status", "devices", "help", "quit", "exit",
}

// ErrNotCompared is returned by navigation before a comparison exists.
var ErrNotCompared = errors.New("nothing compared yet (use compare)")

// Shell is an interactive session over one comparison.
type Shell struct {
	env   *Env
	cmp   *session.Comparison
	theme *styles.Theme
	out   io.Writer
}

// NewShell creates a shell writing to env.Out.
func NewShell(env *Env) *Shell {
	return &Shell{
		env:   env,
		cmp:   session.New(env.SessionConfig(), env.Log.Logger),
		theme: styles.NewTheme(env.Config.UI.Theme),
		out:   env.Out,
	}
}

// Comparison exposes the shell's session.
func (s *Shell) Comparison() *session.Comparison {
	return s.cmp
}

// Execute runs one command line. quit is true when the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		s.printHelp()
	case "left", "l":
		return false, s.selectSide(ctx, session.Left, args)
	case "right", "r":
		return false, s.selectSide(ctx, session.Right, args)
	case "compare", "c":
		return false, s.compare()
	case "next", "n":
		return false, s.move(s.cmp.Next, "No further differences")
	case "prev", "previous", "p":
		return false, s.move(s.cmp.Previous, "No earlier differences")
	case "show":
		return false, s.show()
	case "summary":
		return false, s.summary()
	case "status":
		s.status()
	case "devices":
		return false, listDevices(s.env)
	default:
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}
	return false, nil
}

func (s *Shell) selectSide(ctx context.Context, side session.Side, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s REF", side)
	}
	ref := args[0]
	s.cmp.Select(side, ref, "")
	token := s.cmp.Selection(side).Token

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	doc, err := s.env.Source.Fetch(ctx, ref)
	if err != nil {
		return err
	}
	if !s.cmp.Resolve(side, token, doc) {
		return fmt.Errorf("%s selection changed while loading %s", side, ref)
	}

	sel := s.cmp.Selection(side)
	fmt.Fprintf(s.out, "%s %s (%d lines)\n", LabelStyle.Render(side.String()), sel.Label, session.LineCount(sel.Document.Text))
	if s.cmp.State() == session.Ready {
		fmt.Fprintln(s.out, DimStyle.Render("Both documents loaded. Type compare."))
	}
	return nil
}

func (s *Shell) compare() error {
	if err := s.cmp.Compare(); err != nil {
		return err
	}
	st := s.cmp.Status()
	fmt.Fprintln(s.out, components.SummaryBadge(s.theme, st.Summary))
	if st.HasCursor {
		s.printChange(st)
	}
	return nil
}

func (s *Shell) move(step func() (int, bool), atEdge string) error {
	if s.cmp.State() != session.Compared {
		return ErrNotCompared
	}
	if _, ok := s.cmp.Cursor(); !ok {
		fmt.Fprintln(s.out, SuccessStyle.Render("Documents are identical"))
		return nil
	}
	if _, ok := step(); !ok {
		fmt.Fprintln(s.out, WarningStyle.Render(atEdge))
		return nil
	}
	s.printChange(s.cmp.Status())
	return nil
}

// printChange prints the line under the cursor with its position.
func (s *Shell) printChange(st session.Status) {
	line := s.cmp.Result().At(st.Cursor)
	number := line.LeftLine
	if line.Kind == diff.LineAdded {
		number = line.RightLine
	}
	fmt.Fprintf(s.out, "%s  %s %4d  %s\n",
		components.ChangePosition(s.theme, st.ChangeNum, st.Changes),
		line.Kind.Prefix(), number, line.Content)
}

func (s *Shell) show() error {
	if s.cmp.State() != session.Compared {
		return ErrNotCompared
	}
	st := s.cmp.Status()
	current := -1
	if st.HasCursor {
		current = st.Cursor
	}

	width := s.env.Args.Width
	if width <= 0 {
		width = GetTerminalWidth()
	}
	view := components.NewSideBySide(s.theme)
	view.SetWidth(width)
	view.LineNumbers = s.env.Config.UI.LineNumbers
	view.TabWidth = s.env.Config.UI.TabWidth

	fmt.Fprintln(s.out, view.Header(st.Left.Label, st.Right.Label))
	if r := s.cmp.Result(); r.Len() > 0 {
		fmt.Fprintln(s.out, view.Render(r, current))
	}
	return nil
}

func (s *Shell) summary() error {
	if s.cmp.State() != session.Compared {
		return ErrNotCompared
	}
	printSummary(s.env, s.cmp.Status())
	return nil
}

func (s *Shell) status() {
	st := s.cmp.Status()
	fmt.Fprintln(s.out, RenderField("Session", st.ID))
	fmt.Fprintln(s.out, RenderField("State", st.State.String()))
	fmt.Fprintln(s.out, RenderField("Left", describeSelection(st.Left)))
	fmt.Fprintln(s.out, RenderField("Right", describeSelection(st.Right)))
	if st.State == session.Compared {
		fmt.Fprintln(s.out, RenderField("Summary", st.Summary.String()))
		fmt.Fprintln(s.out, RenderField("Compared", session.FormatDuration(time.Since(st.ComparedAt))+" ago"))
		if st.HasCursor {
			fmt.Fprintln(s.out, RenderField("Change", fmt.Sprintf("%d/%d", st.ChangeNum, st.Changes)))
		}
	}
}

func describeSelection(sel session.Selection) string {
	switch {
	case !sel.Selected:
		return "(none)"
	case !sel.Resolved:
		return sel.Ref + " (not loaded)"
	default:
		return sel.Label
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, TitleStyle.Render("Commands"))
	for _, c := range [][2]string{
		{"left REF", "Select and load the left document"},
		{"right REF", "Select and load the right document"},
		{"compare", "Align the two documents"},
		{"next, n", "Move to the next change"},
		{"prev, p", "Move to the previous change"},
		{"show", "Print the side-by-side view"},
		{"summary", "Print added/removed/unchanged counts"},
		{"status", "Print the session state"},
		{"devices", "List catalog devices"},
		{"quit", "Leave the shell"},
	} {
		fmt.Fprintf(s.out, "  %-12s %s\n", c[0], DimStyle.Render(c[1]))
	}
}

// complete offers command names, then catalog refs for left/right.
func (s *Shell) complete(line string) []string {
	fields := strings.Fields(line)
	var out []string

	if len(fields) <= 1 && !strings.HasSuffix(line, " ") {
		for _, c := range shellCommands {
			if strings.HasPrefix(c, strings.ToLower(line)) {
				out = append(out, c)
			}
		}
		return out
	}

	cmd := strings.ToLower(fields[0])
	if (cmd != "left" && cmd != "right") || s.env.Catalog == nil {
		return nil
	}
	prefix := ""
	if len(fields) > 1 {
		prefix = fields[1]
	}
	for _, d := range s.env.Catalog.Devices() {
		for _, when := range []string{"latest", "previous"} {
			ref := d.Name + "@" + when
			if strings.HasPrefix(strings.ToLower(ref), strings.ToLower(prefix)) {
				out = append(out, cmd+" "+ref)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Run reads commands until quit, EOF or Ctrl+C.
func (s *Shell) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	historyFile := shellHistoryPath()
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer saveHistory(line, historyFile)

	fmt.Fprintln(s.out, TitleStyle.Render("confdiff shell")+DimStyle.Render("  type help for commands"))

	for {
		input, err := line.Prompt(shellPrompt)
		if err != nil {
			// Ctrl+C, Ctrl+D or a closed terminal all end the shell.
			fmt.Fprintln(s.out)
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		quit, err := s.Execute(ctx, input)
		if err != nil {
			fmt.Fprintf(s.env.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
		if quit || ctx.Err() != nil {
			return nil
		}
	}
}

func shellHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "shell_history")
}

func saveHistory(line *liner.State, path string) {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}

// preload selects and loads any documents given on the command line.
func (s *Shell) preload(ctx context.Context, refs []string) error {
	sides := []session.Side{session.Left, session.Right}
	for i, ref := range refs {
		if err := s.selectSide(ctx, sides[i], []string{ref}); err != nil {
			return err
		}
	}
	return nil
}
