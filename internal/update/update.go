// Package update checks GitHub releases for a newer poker binary and replaces
// the running one in place.
package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/creativeprojects/go-selfupdate"
	log "github.com/sirupsen/logrus"
)

const (
	repoOwner     = "pengelbrecht"
	repoName      = "poker"
	checkInterval = 24 * time.Hour
)

// ErrDevBuild is returned when a development build is asked to upgrade.
var ErrDevBuild = errors.New("cannot update dev builds")

// Release describes a published version.
type Release struct {
	Version    string
	ReleaseURL string
}

// cacheEntry stores the last check so the notice costs one request per day.
type cacheEntry struct {
	LastCheck       time.Time `json:"last_check"`
	LatestVersion   string    `json:"latest_version,omitempty"`
	UpdateAvailable bool      `json:"update_available"`
}

// Checker looks up releases of the poker repository.
type Checker struct {
	// CacheFile holds the result of the last check. Empty disables caching.
	CacheFile string

	now    func() time.Time
	detect func(ctx context.Context, current string) (*Release, bool, error)
}

// NewChecker returns a checker caching into cacheFile.
func NewChecker(cacheFile string) *Checker {
	return &Checker{CacheFile: cacheFile, now: time.Now, detect: detectLatest}
}

// DefaultCacheFile is the cache location next to the config file.
func DefaultCacheFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "poker", "update-cache.json")
}

func newUpdater() (*selfupdate.Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("create GitHub source: %w", err)
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: source})
	if err != nil {
		return nil, fmt.Errorf("create updater: %w", err)
	}
	return updater, nil
}

// detectLatest asks GitHub for the newest release and compares it with
// current using semver rules.
func detectLatest(ctx context.Context, current string) (*Release, bool, error) {
	updater, err := newUpdater()
	if err != nil {
		return nil, false, err
	}
	latest, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug(repoOwner, repoName))
	if err != nil {
		return nil, false, fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	release := &Release{Version: latest.Version(), ReleaseURL: latest.URL}
	return release, latest.GreaterThan(current), nil
}

func isDev(version string) bool {
	v := strings.TrimPrefix(version, "v")
	return v == "" || v == "dev"
}

// Check reports the latest release and whether it is newer than current.
// Dev builds never report an update.
func (c *Checker) Check(ctx context.Context, current string) (*Release, bool, error) {
	if isDev(current) {
		return nil, false, nil
	}
	return c.detect(ctx, strings.TrimPrefix(current, "v"))
}

// Apply replaces the running executable with the latest release.
func (c *Checker) Apply(ctx context.Context, current string) (*Release, error) {
	if isDev(current) {
		return nil, ErrDevBuild
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	if method := DetectInstallMethod(exe); method == InstallHomebrew {
		return nil, fmt.Errorf("poker was installed via Homebrew, run: brew upgrade %s/tap/%s", repoOwner, repoName)
	}

	updater, err := newUpdater()
	if err != nil {
		return nil, err
	}
	latest, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug(repoOwner, repoName))
	if err != nil {
		return nil, fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return nil, errors.New("no releases found")
	}
	if !latest.GreaterThan(strings.TrimPrefix(current, "v")) {
		return nil, fmt.Errorf("already at latest version (%s)", current)
	}
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	return &Release{Version: latest.Version(), ReleaseURL: latest.URL}, nil
}

// Notice returns a one-line upgrade hint when a newer release exists, or an
// empty string. The network is consulted at most once per day.
func (c *Checker) Notice(ctx context.Context, current string) string {
	if isDev(current) {
		return ""
	}

	if entry := c.load(); entry != nil && c.now().Sub(entry.LastCheck) < checkInterval {
		if entry.UpdateAvailable && newerVersion(entry.LatestVersion, current) {
			return formatNotice(current, entry.LatestVersion)
		}
		return ""
	}

	release, available, err := c.Check(ctx, current)
	if err != nil {
		log.Debugf("update check failed: %v", err)
	}
	entry := &cacheEntry{LastCheck: c.now(), UpdateAvailable: available && err == nil}
	if release != nil {
		entry.LatestVersion = release.Version
	}
	c.save(entry)

	if !entry.UpdateAvailable {
		return ""
	}
	return formatNotice(current, release.Version)
}

func (c *Checker) load() *cacheEntry {
	if c.CacheFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.CacheFile)
	if err != nil {
		return nil
	}
	var entry cacheEntry
	if err := sonic.ConfigStd.Unmarshal(data, &entry); err != nil {
		return nil
	}
	return &entry
}

func (c *Checker) save(entry *cacheEntry) {
	if c.CacheFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.CacheFile), 0o755); err != nil {
		return
	}
	data, err := sonic.ConfigStd.Marshal(entry)
	if err != nil {
		return
	}
	_ = os.WriteFile(c.CacheFile, data, 0o644)
}

// InstallMethod represents how poker was installed.
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

// DetectInstallMethod classifies the executable at exe by its location.
func DetectInstallMethod(exe string) InstallMethod {
	if exe == "" {
		return InstallUnknown
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	if strings.Contains(exe, "/Cellar/") ||
		strings.HasPrefix(exe, "/opt/homebrew/") ||
		strings.Contains(exe, "linuxbrew") {
		return InstallHomebrew
	}
	return InstallBinary
}

// newerVersion reports whether a is a newer major.minor.patch than b.
func newerVersion(a, b string) bool {
	parse := func(v string) [3]int {
		var out [3]int
		parts := strings.SplitN(strings.TrimPrefix(v, "v"), ".", 3)
		for i, p := range parts {
			_, _ = fmt.Sscanf(p, "%d", &out[i])
		}
		return out
	}
	av, bv := parse(a), parse(b)
	for i := range av {
		if av[i] != bv[i] {
			return av[i] > bv[i]
		}
	}
	return false
}

func formatNotice(current, latest string) string {
	return fmt.Sprintf("Update available: %s -> %s (run: poker upgrade)", current, latest)
}
