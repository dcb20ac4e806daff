package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gestured/gestured/internal/domain/gesture"
	"github.com/gestured/gestured/internal/domain/match"
)

// Device is one configured input device and its ordered rule list.
type Device struct {
	Path  string
	Rules []match.Rule
}

// ruleFile mirrors the TOML layout of a rule file.
type ruleFile struct {
	Devices []deviceEntry `toml:"devices"`
}

type deviceEntry struct {
	Device   string      `toml:"device"`
	Gestures []ruleEntry `toml:"gestures"`
}

type ruleEntry struct {
	Type      string `toml:"type"`
	Fingers   int    `toml:"fingers"`
	Direction string `toml:"direction"`
	Execute   string `toml:"execute"`
}

// LoadRules reads gesture rule files. With an explicit path only that
// file is read and it must exist. Otherwise the search locations are
// walked in ascending precedence and a later file that names a device
// replaces that device's whole rule list.
func LoadRules(explicit string) ([]Device, error) {
	if explicit != "" {
		return loadRuleFile(explicit)
	}

	index := make(map[string]int)
	var out []Device

	for _, path := range ruleFilePaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		devices, err := loadRuleFile(path)
		if err != nil {
			return nil, err
		}
		for _, d := range devices {
			if i, seen := index[d.Path]; seen {
				// Replacement, not append, so a user file fully
				// overrides the system-wide binding for a device.
				out[i] = d
				continue
			}
			index[d.Path] = len(out)
			out = append(out, d)
		}
	}

	return out, nil
}

// SearchLocations lists where rules are looked for, in ascending
// precedence order. Entries without a .toml suffix are directories
// scanned for *.toml drop-ins.
func SearchLocations() []string {
	xdg := xdgConfigHome()

	return []string{
		"/etc/gestured.toml",
		"/etc/gestured.d",
		"/usr/local/etc/gestured.toml",
		"/usr/local/etc/gestured.d",
		filepath.Join(xdg, "gestured.toml"),
		filepath.Join(xdg, "gestured.d"),
	}
}

// ruleFilePaths expands the search locations into concrete files.
// Drop-in directories contribute their *.toml entries in name order.
func ruleFilePaths() []string {
	var out []string
	for _, loc := range SearchLocations() {
		if strings.HasSuffix(loc, ".toml") {
			out = append(out, loc)
			continue
		}
		entries, err := os.ReadDir(loc)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
				continue
			}
			out = append(out, filepath.Join(loc, e.Name()))
		}
	}

	return out
}

// xdgConfigHome resolves the per-user configuration root.
func xdgConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config")
}

func loadRuleFile(path string) ([]Device, error) {
	var rf ruleFile
	if _, err := toml.DecodeFile(path, &rf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadRules, path, err)
	}

	seen := make(map[string]struct{})
	var out []Device
	for _, entry := range rf.Devices {
		if strings.TrimSpace(entry.Device) == "" {
			return nil, fmt.Errorf("%w: %s: device path missing", ErrInvalidRule, path)
		}
		if _, dup := seen[entry.Device]; dup {
			return nil, fmt.Errorf("%w: %s: device %s configured twice", ErrInvalidRule, path, entry.Device)
		}
		seen[entry.Device] = struct{}{}

		d := Device{Path: entry.Device}
		for i, r := range entry.Gestures {
			rule, err := r.compile()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: device %s gesture %d: %v", ErrInvalidRule, path, entry.Device, i+1, err)
			}
			d.Rules = append(d.Rules, rule)
		}
		out = append(out, d)
	}

	return out, nil
}

// compile turns a TOML rule entry into a matchable rule, rejecting
// combinations the engine can never produce.
func (r ruleEntry) compile() (match.Rule, error) {
	kind, err := gesture.ParseKind(r.Type)
	if err != nil {
		return match.Rule{}, err
	}
	if r.Fingers < 1 {
		return match.Rule{}, errors.New("fingers must be at least one")
	}
	if strings.TrimSpace(r.Execute) == "" {
		return match.Rule{}, errors.New("execute must not be empty")
	}

	rule := match.Rule{Kind: kind, Fingers: r.Fingers, Action: r.Execute}
	switch kind {
	case gesture.KindSwipe:
		dir, err := gesture.ParseDirection(r.Direction)
		if err != nil {
			return match.Rule{}, err
		}
		rule.Direction = dir
	case gesture.KindTap:
		if strings.TrimSpace(r.Direction) != "" {
			return match.Rule{}, errors.New("direction is only valid for swipes")
		}
	}

	return rule, nil
}
