// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// devices_cmd.go - Catalog listing.

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/confdiff/internal/source"
	"github.com/jeranaias/confdiff/internal/util"
)

// HandleDevices lists devices, or one device's snapshots when a device is named.
func HandleDevices(env *Env, device string) error {
	if device == "" {
		return listDevices(env)
	}
	return listSnapshots(env, device)
}

func listDevices(env *Env) error {
	if env.Catalog == nil {
		return ErrNoCatalog
	}
	devices := env.Catalog.Devices()

	fmt.Fprintf(env.Out, "%-4s %-24s %-15s %-14s %-12s %s\n", "ID", "NAME", "ADDRESS", "MODEL", "STATUS", "LAST SYNC")
	fmt.Fprintln(env.Out, RenderSeparator(84))
	for _, d := range devices {
		lastSync := "-"
		if d.LastSync != nil {
			lastSync = d.LastSync.Local().Format("2006-01-02 15:04")
		}
		status := fmt.Sprintf("%-12s", d.SyncStatus.Label())
		fmt.Fprintf(env.Out, "%-4s %-24s %-15s %-14s %s %s\n",
			util.TruncateRunes(d.ID, 4),
			util.TruncateRunes(d.Name, 24),
			util.TruncateRunes(orDash(d.IPAddress), 15),
			util.TruncateRunes(orDash(d.Model), 14),
			statusStyle(d.SyncStatus).Render(status),
			lastSync)
	}
	fmt.Fprintln(env.Out, DimStyle.Render(fmt.Sprintf("%d devices", len(devices))))
	return nil
}

func listSnapshots(env *Env, key string) error {
	if env.Catalog == nil {
		return ErrNoCatalog
	}
	d, ok := env.Catalog.Device(key)
	if !ok {
		return fmt.Errorf("%w: device %q", source.ErrNotFound, key)
	}
	snaps, err := env.Catalog.Snapshots(d.ID)
	if err != nil {
		return err
	}

	fmt.Fprintln(env.Out, TitleStyle.Render(d.Name))
	fmt.Fprintln(env.Out, RenderField("Address", orDash(d.IPAddress)))
	fmt.Fprintln(env.Out, RenderField("Model", strings.TrimSpace(orDash(d.Model)+" "+d.Version)))
	fmt.Fprintln(env.Out, RenderField("Status", d.SyncStatus.Label()))
	fmt.Fprintln(env.Out)

	if len(snaps) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("No snapshots"))
		return nil
	}
	for i, s := range snaps {
		var tag string
		switch i {
		case 0:
			tag = "latest"
		case 1:
			tag = "previous"
		}
		fmt.Fprintf(env.Out, "  %-28s %-9s %s\n", source.SnapshotRef(d.ID, s.Timestamp), tag,
			DimStyle.Render(s.Timestamp.Local().Format("2006-01-02 15:04:05")))
	}
	return nil
}

func statusStyle(s source.SyncStatus) lipgloss.Style {
	switch s {
	case source.StatusInSync:
		return SuccessStyle
	case source.StatusOutOfSync:
		return ErrorStyle
	case source.StatusWarning:
		return WarningStyle
	default:
		return DimStyle
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
