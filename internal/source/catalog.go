// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SyncStatus is a device's configuration sync state.
type SyncStatus string

const (
	StatusInSync    SyncStatus = "IN_SYNC"
	StatusOutOfSync SyncStatus = "OUT_OF_SYNC"
	StatusWarning   SyncStatus = "WARNING"
	StatusUnknown   SyncStatus = "UNKNOWN"
)

// Label returns a human-readable status.
func (s SyncStatus) Label() string {
	switch s {
	case StatusInSync:
		return "In sync"
	case StatusOutOfSync:
		return "Out of sync"
	case StatusWarning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// Device is a managed network device.
type Device struct {
	ID         string     `yaml:"id" validate:"required,excludesall=@"`
	Name       string     `yaml:"name" validate:"required,excludesall=@"`
	IPAddress  string     `yaml:"ip_address" validate:"omitempty,ip"`
	Model      string     `yaml:"model"`
	Version    string     `yaml:"version"`
	SyncStatus SyncStatus `yaml:"sync_status" validate:"omitempty,oneof=IN_SYNC OUT_OF_SYNC WARNING UNKNOWN"`
	LastSync   *time.Time `yaml:"last_sync"`
}

// Snapshot is one captured configuration of a device.
type Snapshot struct {
	DeviceID  string    `yaml:"device_id" validate:"required"`
	Timestamp time.Time `yaml:"timestamp"`
	Path      string    `yaml:"path" validate:"required_without=Content"`
	Content   string    `yaml:"content" validate:"required_without=Path"`
}

type catalogFile struct {
	Devices   []Device   `yaml:"devices" validate:"required,dive"`
	Snapshots []Snapshot `yaml:"snapshots" validate:"dive"`
}

// Catalog is a device inventory with configuration snapshots.
type Catalog struct {
	devices   []Device
	snapshots map[string][]Snapshot // device ID -> newest first
}

// =============================================================================
// LOADING
// =============================================================================

// LoadCatalog reads a YAML catalog. Relative snapshot paths are resolved
// against the catalog's directory.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := ParseCatalog(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte, baseDir string) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := validateCatalog(&f); err != nil {
		return nil, err
	}

	c := &Catalog{
		devices:   f.Devices,
		snapshots: make(map[string][]Snapshot, len(f.Devices)),
	}
	for i := range c.devices {
		if c.devices[i].SyncStatus == "" {
			c.devices[i].SyncStatus = StatusUnknown
		}
	}
	for _, s := range f.Snapshots {
		if s.Path != "" && !filepath.IsAbs(s.Path) && baseDir != "" {
			s.Path = filepath.Join(baseDir, s.Path)
		}
		c.snapshots[s.DeviceID] = append(c.snapshots[s.DeviceID], s)
	}
	for _, list := range c.snapshots {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Timestamp.After(list[j].Timestamp)
		})
	}
	return c, nil
}

func validateCatalog(f *catalogFile) error {
	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msg := fmt.Sprintf("%s: rule '%s'", e.Namespace(), e.Tag())
				if e.Param() != "" {
					msg += fmt.Sprintf(" (%s)", e.Param())
				}
				msgs = append(msgs, msg)
			}
			return fmt.Errorf("invalid catalog: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid catalog: %w", err)
	}

	ids := make(map[string]bool, len(f.Devices))
	for _, d := range f.Devices {
		if ids[d.ID] {
			return fmt.Errorf("invalid catalog: duplicate device id %q", d.ID)
		}
		ids[d.ID] = true
	}
	seen := make(map[string]bool, len(f.Snapshots))
	for i, s := range f.Snapshots {
		if !ids[s.DeviceID] {
			return fmt.Errorf("invalid catalog: snapshot %d references unknown device %q", i, s.DeviceID)
		}
		if s.Timestamp.IsZero() {
			return fmt.Errorf("invalid catalog: snapshot %d of device %q has no timestamp", i, s.DeviceID)
		}
		key := s.DeviceID + "@" + s.Timestamp.UTC().Format(time.RFC3339Nano)
		if seen[key] {
			return fmt.Errorf("invalid catalog: duplicate snapshot %s", key)
		}
		seen[key] = true
	}
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Devices returns all devices in catalog order.
func (c *Catalog) Devices() []Device {
	out := make([]Device, len(c.devices))
	copy(out, c.devices)
	return out
}

// Device finds a device by ID or, case-insensitively, by name.
func (c *Catalog) Device(key string) (Device, bool) {
	for _, d := range c.devices {
		if d.ID == key {
			return d, true
		}
	}
	for _, d := range c.devices {
		if strings.EqualFold(d.Name, key) {
			return d, true
		}
	}
	return Device{}, false
}

// Snapshots returns a device's snapshots, newest first.
func (c *Catalog) Snapshots(deviceKey string) ([]Snapshot, error) {
	d, ok := c.Device(deviceKey)
	if !ok {
		return nil, fmt.Errorf("%w: device %q", ErrNotFound, deviceKey)
	}
	list := c.snapshots[d.ID]
	out := make([]Snapshot, len(list))
	copy(out, list)
	return out, nil
}

// SnapshotRef builds the ref that names a snapshot.
func SnapshotRef(deviceID string, ts time.Time) string {
	return deviceID + "@" + ts.UTC().Format(time.RFC3339)
}

// ParseRef splits DEVICE@WHEN.
func ParseRef(ref string) (device, when string, err error) {
	device, when, ok := strings.Cut(ref, "@")
	if !ok || device == "" || when == "" {
		return "", "", fmt.Errorf("%w: %q (want DEVICE@TIMESTAMP)", ErrInvalidRef, ref)
	}
	return device, when, nil
}

// resolve finds the device and snapshot a ref names.
func (c *Catalog) resolve(ref string) (Device, Snapshot, error) {
	key, when, err := ParseRef(ref)
	if err != nil {
		return Device{}, Snapshot{}, err
	}
	d, ok := c.Device(key)
	if !ok {
		return Device{}, Snapshot{}, fmt.Errorf("%w: device %q", ErrNotFound, key)
	}
	list := c.snapshots[d.ID]

	switch strings.ToLower(when) {
	case "latest":
		if len(list) > 0 {
			return d, list[0], nil
		}
	case "previous":
		if len(list) > 1 {
			return d, list[1], nil
		}
	default:
		ts, err := time.Parse(time.RFC3339, when)
		if err != nil {
			return Device{}, Snapshot{}, fmt.Errorf("%w: bad timestamp %q", ErrInvalidRef, when)
		}
		for _, s := range list {
			if s.Timestamp.Equal(ts) {
				return d, s, nil
			}
		}
	}
	return Device{}, Snapshot{}, fmt.Errorf("%w: no snapshot %s of %s", ErrNotFound, when, d.Name)
}

// Path implements Locator for file-backed snapshots.
func (c *Catalog) Path(ref string) (string, bool) {
	_, s, err := c.resolve(ref)
	if err != nil || s.Path == "" {
		return "", false
	}
	return s.Path, true
}

// Fetch implements Source.
func (c *Catalog) Fetch(ctx context.Context, ref string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	d, s, err := c.resolve(ref)
	if err != nil {
		return Document{}, err
	}

	label := fmt.Sprintf("%s @ %s", d.Name, s.Timestamp.Local().Format("2006-01-02 15:04"))
	if s.Path == "" {
		return Document{Ref: ref, Label: label, Text: s.Content, Timestamp: s.Timestamp}, nil
	}

	doc, err := readFile(ref, s.Path, label)
	if err != nil {
		return Document{}, err
	}
	doc.Timestamp = s.Timestamp
	return doc, nil
}
