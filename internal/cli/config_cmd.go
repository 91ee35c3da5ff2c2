// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration inspection and editing.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/confdiff/internal/config"
)

// HandleConfig runs "config [show|get KEY|set KEY VALUE|path]".
func HandleConfig(env *Env, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "show":
		showConfig(env)
	case "path":
		path, err := configPath(env.Args)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Out, path)
	case "get":
		v, err := env.Config.Get(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Out, v)
	case "set":
		return setConfig(env, args[1], args[2])
	default:
		return NewUsageError(fmt.Sprintf("unknown config subcommand %q", sub))
	}
	return nil
}

// showConfig prints every key as "key = value", or the whole configuration
// as JSON with --format json.
func showConfig(env *Env) {
	if env.Args.Format == FormatJSON {
		fmt.Fprintln(env.Out, env.Config.String())
		return
	}
	for _, key := range config.GetAllKeys() {
		v, err := env.Config.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(env.Out, "%s = %v\n", key, v)
	}
}

func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

// setConfig edits the file itself, so flag and environment overrides in
// env.Config are not persisted.
func setConfig(env *Env, key, value string) error {
	path, err := configPath(env.Args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		load := config.LoadTOML
		if strings.HasSuffix(path, ".json") {
			load = config.LoadJSON
		}
		if err := load(cfg, path); err != nil {
			return err
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch {
	case env.Args.ConfigPath == "":
		err = config.Save(cfg)
	case strings.HasSuffix(path, ".json"):
		err = config.SaveJSON(cfg, path)
	default:
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return err
	}

	env.Log.Info().Str("key", key).Str("path", path).Msg("config updated")
	if !env.Args.Quiet {
		v, _ := cfg.Get(key)
		fmt.Fprintln(env.Out, SuccessStyle.Render(fmt.Sprintf("%s = %v", key, v)))
	}
	return nil
}
