package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

const (
	appName      = "jmana"
	DefaultLabel = "Default"
	profileExt   = ".yaml"
)

var (
	ErrNoConfig   = errors.New("no config selected")
	ErrEmptyLabel = errors.New("label cannot be empty")
)

func ConfigRoot() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, appName)
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

func ConfigsDir() string {
	return filepath.Join(ConfigRoot(), "configs")
}

func CurrentLabelFile() string {
	return filepath.Join(ConfigRoot(), "current_config")
}

func ensureDirs() error {
	return os.MkdirAll(ConfigsDir(), 0755)
}

func validLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrEmptyLabel
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return fmt.Errorf("invalid label %q", label)
	}
	return nil
}

func ConfigPathByLabel(label string) (string, error) {
	if err := validLabel(label); err != nil {
		return "", err
	}

	path := filepath.Join(ConfigsDir(), strings.TrimSpace(label)+profileExt)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("config %q does not exist", label)
	}

	return path, nil
}

func CurrentLabel() (string, error) {
	b, err := os.ReadFile(CurrentLabelFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	label := strings.TrimSpace(string(b))
	if label == "" {
		return "", ErrNoConfig
	}

	return label, nil
}

// ActiveConfigPath returns ErrNoConfig when no profile is selected or the
// selected one was deleted.
func ActiveConfigPath() (string, error) {
	label, err := CurrentLabel()
	if err != nil {
		return "", err
	}

	path := filepath.Join(ConfigsDir(), label+profileExt)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", ErrNoConfig
	}

	return path, nil
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func ListConfigs() ([]ConfigInfo, error) {
	if err := ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(ConfigsDir())
	if err != nil {
		return nil, err
	}

	active, _ := CurrentLabel()
	var out []ConfigInfo

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, profileExt) {
			continue
		}

		label := strings.TrimSuffix(name, profileExt)
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   filepath.Join(ConfigsDir(), name),
			Active: label == active,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func SwitchConfig(label string) error {
	if _, err := ConfigPathByLabel(label); err != nil {
		return err
	}

	return os.WriteFile(CurrentLabelFile(), []byte(strings.TrimSpace(label)), 0644)
}

// CreateConfig writes a profile with default values and returns its path.
func CreateConfig(label string) (string, error) {
	if err := validLabel(label); err != nil {
		return "", err
	}
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := filepath.Join(ConfigsDir(), strings.TrimSpace(label)+profileExt)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config %q already exists: %w", label, os.ErrExist)
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, nil
}

// InitDefaultConfig creates the Default profile if missing and makes it
// active. The returned error wraps os.ErrExist when it was already there.
func InitDefaultConfig() (string, error) {
	path, err := CreateConfig(DefaultLabel)
	if err != nil && !errors.Is(err, os.ErrExist) {
		return "", err
	}
	if path == "" {
		path = filepath.Join(ConfigsDir(), DefaultLabel+profileExt)
	}

	if serr := SwitchConfig(DefaultLabel); serr != nil {
		return "", serr
	}

	return path, err
}

// RenameConfig moves a profile to a new label and keeps it active if it was.
func RenameConfig(oldLabel, newLabel string) error {
	oldPath, err := ConfigPathByLabel(oldLabel)
	if err != nil {
		return err
	}
	if err := validLabel(newLabel); err != nil {
		return err
	}

	newLabel = strings.TrimSpace(newLabel)
	newPath := filepath.Join(ConfigsDir(), newLabel+profileExt)
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("config %q already exists: %w", newLabel, os.ErrExist)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := CurrentLabel(); active == strings.TrimSpace(oldLabel) {
		return os.WriteFile(CurrentLabelFile(), []byte(newLabel), 0644)
	}

	return nil
}

// RemoveConfig deletes a profile. Removing the active one makes Default
// active again, or leaves no profile selected when Default is missing.
// It returns the label that became active, if any.
func RemoveConfig(label string) (string, error) {
	path, err := ConfigPathByLabel(label)
	if err != nil {
		return "", err
	}

	label = strings.TrimSpace(label)
	if label == DefaultLabel {
		return "", fmt.Errorf("cannot remove the %s config", DefaultLabel)
	}

	if err := os.Remove(path); err != nil {
		return "", err
	}

	if active, _ := CurrentLabel(); active != label {
		return "", nil
	}

	if err := SwitchConfig(DefaultLabel); err == nil {
		return DefaultLabel, nil
	}

	if err := os.Remove(CurrentLabelFile()); err != nil && !os.IsNotExist(err) {
		return "", err
	}

	return "", nil
}

// ResetActiveConfig overwrites the active profile with default values.
func ResetActiveConfig() (string, error) {
	path, err := ActiveConfigPath()
	if err != nil {
		return "", err
	}

	return path, SaveYAML(DefaultConfig(), path)
}

// Editor picks the program used by `config edit`: $VISUAL, then $EDITOR,
// then a platform default.
func Editor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if e := strings.TrimSpace(os.Getenv(env)); e != "" {
			return e
		}
	}

	if runtime.GOOS == "windows" {
		return "notepad"
	}
	return "vi"
}
