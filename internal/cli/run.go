// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// run.go - Command dispatch.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/confdiff/internal/ui/compare"
	"github.com/jeranaias/confdiff/internal/ui/styles"
	"github.com/jeranaias/confdiff/internal/watch"
)

// Run parses argv, executes the command and returns the process exit code.
func Run(argv []string, stdout, stderr io.Writer) int {
	cmd, args, err := Parse(argv)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n\n", ErrorStyle.Render("Error:"), err)
		PrintUsage(stderr)
		return ExitError
	}

	if args.NoColor {
		ForceColorsEnabled(false)
		styles.DisableColor()
	}

	switch cmd {
	case CmdHelp:
		PrintUsage(stdout)
		return ExitSuccess
	case CmdVersion:
		PrintVersion(stdout)
		return ExitSuccess
	}

	env, err := NewEnv(args, stdout, stderr, cmd)
	if err != nil {
		printError(stderr, err)
		return ExitError
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := execute(ctx, cmd, env)
	if err != nil {
		env.Log.Debug().Err(err).Msg("command failed")
		printError(stderr, err)
		return ExitError
	}
	return code
}

func execute(ctx context.Context, cmd Command, env *Env) (int, error) {
	pos := env.Args.Positional

	switch cmd {
	case CmdDiff, CmdSummary:
		handle := HandleDiff
		name := "diff"
		if cmd == CmdSummary {
			handle, name = HandleSummary, "summary"
		}
		differ, err := handle(ctx, env, pos[0], pos[1])
		if err != nil {
			return ExitError, wrapCommand(name, err)
		}
		if differ {
			return ExitDifferent, nil
		}
		return ExitSuccess, nil

	case CmdShell:
		sh := NewShell(env)
		if err := sh.preload(ctx, pos); err != nil {
			return ExitError, wrapCommand("shell", err)
		}
		return ExitSuccess, wrapCommand("shell", sh.Run(ctx))

	case CmdDevices:
		device := ""
		if len(pos) > 0 {
			device = pos[0]
		}
		return ExitSuccess, wrapCommand("devices", HandleDevices(env, device))

	case CmdConfig:
		return ExitSuccess, wrapCommand("config", HandleConfig(env, pos))

	default:
		return ExitSuccess, runTUI(env, pos[0], pos[1])
	}
}

func runTUI(env *Env, leftRef, rightRef string) error {
	if !IsTTY() || !IsStdoutTTY() {
		return errors.New("the viewer needs a terminal; use 'confdiff diff' for piped output")
	}

	opts := compare.Options{
		LeftRef:  leftRef,
		RightRef: rightRef,
		Source:   env.Source,
		Locator:  env.Source,
		Config:   env.Config,
		Log:      env.Log.Logger,
	}
	if env.Config.Watch.Enabled {
		w := watch.New(watch.OptionsFromConfig(env.Config.Watch), env.Log.Logger)
		defer w.Close()
		opts.Watcher = w
	}

	env.Log.Info().Str("left", leftRef).Str("right", rightRef).Msg("starting viewer")
	return compare.Run(opts)
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", ErrorStyle.Render("Error:"), err)
	if IsUsageError(err) {
		fmt.Fprintln(w, DimStyle.Render("Run 'confdiff help' for usage."))
	}
}
