// Package update checks GitHub releases for newer calc builds and replaces
// the running binary.
package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creativeprojects/go-selfupdate"
)

// Repository is the GitHub slug releases are published under.
const Repository = "pengelbrecht/calc"

// InstallMethod describes how calc was installed.
type InstallMethod int

const (
	InstallUnknown InstallMethod = iota
	InstallHomebrew
	InstallBinary
)

func (m InstallMethod) String() string {
	switch m {
	case InstallHomebrew:
		return "homebrew"
	case InstallBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Release summarises an available release.
type Release struct {
	Version   string
	URL       string
	AssetName string
}

// DetectInstallMethod inspects the executable path.
func DetectInstallMethod() InstallMethod {
	exe, err := os.Executable()
	if err != nil {
		return InstallUnknown
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return installMethodForPath(exe)
}

func installMethodForPath(exe string) InstallMethod {
	p := filepath.ToSlash(exe)
	if strings.Contains(p, "/Cellar/") || strings.Contains(p, "/homebrew/") || strings.Contains(p, "/linuxbrew/") {
		return InstallHomebrew
	}
	return InstallBinary
}

// IsDevVersion reports whether version is a local build that cannot be compared.
func IsDevVersion(version string) bool {
	v := strings.TrimPrefix(strings.TrimSpace(version), "v")
	return v == "" || v == "dev" || strings.HasPrefix(v, "0.0.0")
}

// CheckForUpdate looks up the latest release. hasUpdate is false when the
// current version is already the latest or no release exists.
func CheckForUpdate(current string) (*Release, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(Repository))
	if err != nil {
		return nil, false, fmt.Errorf("detect latest release: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	rel := &Release{
		Version:   latest.Version(),
		URL:       latest.URL,
		AssetName: latest.AssetName,
	}
	if !IsDevVersion(current) && latest.LessOrEqual(current) {
		return rel, false, nil
	}
	return rel, true, nil
}

// Update replaces the running executable with the latest release.
func Update(current string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(Repository))
	if err != nil {
		return fmt.Errorf("detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", Repository)
	}
	if !IsDevVersion(current) && latest.LessOrEqual(current) {
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("update binary: %w", err)
	}
	return nil
}
