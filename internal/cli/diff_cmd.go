// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// diff_cmd.go - One-shot diff and summary commands.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/confdiff/internal/diff"
	"github.com/jeranaias/confdiff/internal/session"
	"github.com/jeranaias/confdiff/internal/source"
	"github.com/jeranaias/confdiff/internal/ui/components"
	"github.com/jeranaias/confdiff/internal/ui/styles"
)

// fetchTimeout bounds document acquisition for line-mode commands.
const fetchTimeout = 30 * time.Second

// compareRefs fetches both documents concurrently and compares them.
func compareRefs(ctx context.Context, env *Env, leftRef, rightRef string) (*session.Comparison, error) {
	cmp := session.New(env.SessionConfig(), env.Log.Logger)
	cmp.SelectLeft(leftRef, "")
	cmp.SelectRight(rightRef, "")

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	refs := [2]string{session.Left: leftRef, session.Right: rightRef}
	var docs [2]source.Document
	g, gctx := errgroup.WithContext(ctx)
	for _, side := range []session.Side{session.Left, session.Right} {
		ref := refs[side]
		g.Go(func() error {
			doc, err := env.Source.Fetch(gctx, ref)
			if err != nil {
				return fmt.Errorf("%s: %w", side, err)
			}
			docs[side] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, side := range []session.Side{session.Left, session.Right} {
		cmp.Resolve(side, cmp.Selection(side).Token, docs[side])
	}
	if err := cmp.Compare(); err != nil {
		return nil, err
	}
	return cmp, nil
}

// jsonOutput is the --format json document.
type jsonOutput struct {
	Left    string          `json:"left"`
	Right   string          `json:"right"`
	Summary diff.Summary    `json:"summary"`
	Lines   []diff.DiffLine `json:"lines"`
}

// HandleDiff prints the differences between two documents. It reports
// whether they differ.
func HandleDiff(ctx context.Context, env *Env, leftRef, rightRef string) (bool, error) {
	cmp, err := compareRefs(ctx, env, leftRef, rightRef)
	if err != nil {
		return false, err
	}
	st := cmp.Status()
	r := cmp.Result()

	switch env.Args.Format {
	case FormatJSON:
		enc := json.NewEncoder(env.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonOutput{
			Left:    st.Left.Label,
			Right:   st.Right.Label,
			Summary: st.Summary,
			Lines:   r.Lines(),
		}); err != nil {
			return false, err
		}

	case FormatUnified:
		if err := r.WriteUnified(env.Out, st.Left.Label, st.Right.Label, env.Config.Diff.ContextLines); err != nil {
			return false, err
		}

	default:
		width := env.Args.Width
		if width <= 0 {
			width = GetTerminalWidth()
		}
		theme := styles.NewTheme(env.Config.UI.Theme)
		view := components.NewSideBySide(theme)
		view.SetWidth(width)
		view.LineNumbers = env.Config.UI.LineNumbers
		view.TabWidth = env.Config.UI.TabWidth

		fmt.Fprintln(env.Out, view.Header(st.Left.Label, st.Right.Label))
		if r.Len() > 0 {
			fmt.Fprintln(env.Out, view.Render(r, -1))
		}
		if !env.Args.Quiet {
			fmt.Fprintln(env.Out, components.SummaryBadge(theme, st.Summary))
		}
	}

	return !r.Identical(), nil
}

// HandleSummary prints only the counts.
func HandleSummary(ctx context.Context, env *Env, leftRef, rightRef string) (bool, error) {
	cmp, err := compareRefs(ctx, env, leftRef, rightRef)
	if err != nil {
		return false, err
	}
	st := cmp.Status()

	if env.Args.Format == FormatJSON {
		enc := json.NewEncoder(env.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Left    string       `json:"left"`
			Right   string       `json:"right"`
			Summary diff.Summary `json:"summary"`
		}{st.Left.Label, st.Right.Label, st.Summary}); err != nil {
			return false, err
		}
		return st.Summary.Changes() > 0, nil
	}

	printSummary(env, st)
	return st.Summary.Changes() > 0, nil
}

func printSummary(env *Env, st session.Status) {
	fmt.Fprintln(env.Out, RenderField("Left", st.Left.Label))
	fmt.Fprintln(env.Out, RenderField("Right", st.Right.Label))
	fmt.Fprintln(env.Out, RenderField("Added", fmt.Sprint(st.Summary.Added)))
	fmt.Fprintln(env.Out, RenderField("Removed", fmt.Sprint(st.Summary.Removed)))
	fmt.Fprintln(env.Out, RenderField("Unchanged", fmt.Sprint(st.Summary.Unchanged)))
	if st.Summary.Changes() == 0 {
		fmt.Fprintln(env.Out, SuccessStyle.Render("Documents are identical"))
	}
}
