// Package appupdate reports whether a newer tokentrack release exists on
// GitHub and which upgrade command fits the local install.
package appupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/mod/semver"
)

const (
	defaultLatestReleaseURL = "https://api.github.com/repos/janekbaraniewski/tokentrack/releases/latest"
	installScriptURL        = "https://github.com/janekbaraniewski/tokentrack/releases/latest/download/install.sh"
	defaultTimeout          = 1500 * time.Millisecond
	binaryName              = "tokentrack"
)

type InstallMethod string

const (
	InstallMethodUnknown       InstallMethod = "unknown"
	InstallMethodHomebrew      InstallMethod = "homebrew"
	InstallMethodGoInstall     InstallMethod = "go_install"
	InstallMethodInstallScript InstallMethod = "install_script"
)

type CheckOptions struct {
	CurrentVersion   string
	ExecutablePath   string
	LatestReleaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

type Result struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
	InstallMethod   InstallMethod
	UpgradeHint     string
	ExecutablePath  string
}

func Check(ctx context.Context, opts CheckOptions) (Result, error) {
	current := stableVersion(opts.CurrentVersion)
	exe := executablePath(opts.ExecutablePath)
	method := installMethodFor(exe)

	result := Result{
		CurrentVersion: current,
		InstallMethod:  method,
		UpgradeHint:    upgradeHint(method),
		ExecutablePath: exe,
	}

	// Dev and pre-release builds never hit the network.
	if current == "" {
		return result, nil
	}

	latest, err := latestStableRelease(ctx, opts, current)
	if err != nil {
		return result, err
	}

	result.LatestVersion = latest
	result.UpdateAvailable = semver.Compare(latest, current) > 0
	return result, nil
}

func latestStableRelease(ctx context.Context, opts CheckOptions, current string) (string, error) {
	endpoint := strings.TrimSpace(opts.LatestReleaseURL)
	if endpoint == "" {
		endpoint = defaultLatestReleaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", binaryName+"/"+current)
	if token := strings.TrimSpace(os.Getenv("TOKENTRACK_GITHUB_TOKEN")); token != "" && githubAPIHost(endpoint) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch latest release: HTTP %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("decode release payload: %w", err)
	}

	latest := stableVersion(release.TagName)
	if latest == "" {
		return "", fmt.Errorf("latest release tag %q is not a stable version", release.TagName)
	}
	return latest, nil
}

func executablePath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return canonical(p)
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil && strings.TrimSpace(resolved) != "" {
		exe = resolved
	}
	return canonical(exe)
}

// canonical rewrites a path for case-insensitive, slash-separated matching.
func canonical(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return strings.ToLower(filepath.ToSlash(filepath.Clean(p)))
}

// installMethodFor classifies the binary by where it sits on disk. Anything
// not named tokentrack, or living outside the known install locations, maps
// to unknown.
func installMethodFor(exe string) InstallMethod {
	exe = canonical(exe)
	if exe == "" {
		return InstallMethodUnknown
	}
	if strings.TrimSuffix(pathpkg.Base(exe), ".exe") != binaryName {
		return InstallMethodUnknown
	}

	dir := pathpkg.Dir(exe)
	switch {
	case strings.Contains(exe, "/cellar/"+binaryName+"/"), dir == "/opt/homebrew/bin":
		return InstallMethodHomebrew
	case strings.HasSuffix(dir, "/go/bin"), lo.Contains(goBinDirs(), dir):
		return InstallMethodGoInstall
	case lo.Contains(scriptBinDirs(), dir):
		return InstallMethodInstallScript
	default:
		return InstallMethodUnknown
	}
}

// goBinDirs lists the directories `go install` drops binaries into on this
// machine: GOBIN, every GOPATH bin, and the default under the home dir.
func goBinDirs() []string {
	var dirs []string
	if gobin := canonical(os.Getenv("GOBIN")); gobin != "" {
		dirs = append(dirs, gobin)
	}
	for _, gp := range filepath.SplitList(os.Getenv("GOPATH")) {
		if gp = canonical(gp); gp != "" {
			dirs = append(dirs, gp+"/bin")
		}
	}
	if home := canonical(userHome()); home != "" {
		dirs = append(dirs, home+"/go/bin")
	}
	return dirs
}

// scriptBinDirs lists the targets the install script may pick.
func scriptBinDirs() []string {
	dirs := []string{"/usr/local/bin", "/usr/bin"}
	if home := canonical(userHome()); home != "" {
		dirs = append(dirs, home+"/.local/bin", home+"/bin")
	}
	return dirs
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func upgradeHint(method InstallMethod) string {
	switch method {
	case InstallMethodHomebrew:
		return "brew upgrade janekbaraniewski/tap/tokentrack"
	case InstallMethodGoInstall:
		return "go install github.com/janekbaraniewski/tokentrack/cmd/tokentrack@latest"
	default:
		return "curl -fsSL " + installScriptURL + " | bash"
	}
}

// stableVersion canonicalizes a release tag, returning "" for anything that
// is not a plain stable semver (dev builds, pre-releases, build metadata).
func stableVersion(tag string) string {
	v := strings.TrimSpace(tag)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}

// githubAPIHost reports whether the endpoint is the real GitHub API over
// HTTPS. The token only ever travels there.
func githubAPIHost(rawURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	if !strings.EqualFold(parsed.Scheme, "https") {
		return false
	}
	return strings.EqualFold(parsed.Hostname(), "api.github.com")
}
