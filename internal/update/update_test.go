package update

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testChecker(t *testing.T, release *Release, available bool, err error) (*Checker, *int) {
	t.Helper()
	calls := 0
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &Checker{
		CacheFile: filepath.Join(t.TempDir(), "cache.json"),
		now:       func() time.Time { return now },
		detect: func(context.Context, string) (*Release, bool, error) {
			calls++
			return release, available, err
		},
	}
	return c, &calls
}

func TestCheckSkipsDevBuilds(t *testing.T) {
	c, calls := testChecker(t, &Release{Version: "9.9.9"}, true, nil)
	for _, v := range []string{"", "dev", "vdev"} {
		if _, ok, err := c.Check(context.Background(), v); ok || err != nil {
			t.Errorf("Check(%q) = %v, %v", v, ok, err)
		}
	}
	if *calls != 0 {
		t.Errorf("detect called %d times for dev builds", *calls)
	}
}

func TestNoticeUsesCache(t *testing.T) {
	c, calls := testChecker(t, &Release{Version: "1.2.0"}, true, nil)
	ctx := context.Background()

	first := c.Notice(ctx, "v1.1.0")
	if !strings.Contains(first, "1.2.0") || !strings.Contains(first, "poker upgrade") {
		t.Errorf("notice = %q", first)
	}
	second := c.Notice(ctx, "v1.1.0")
	if second != first {
		t.Errorf("cached notice = %q, want %q", second, first)
	}
	if *calls != 1 {
		t.Errorf("detect called %d times, want 1", *calls)
	}

	// After upgrading, the cached release is no longer newer.
	if n := c.Notice(ctx, "v1.2.0"); n != "" {
		t.Errorf("notice after upgrade = %q", n)
	}
}

func TestNoticeExpiresCache(t *testing.T) {
	c, calls := testChecker(t, &Release{Version: "1.2.0"}, true, nil)
	ctx := context.Background()
	c.Notice(ctx, "1.1.0")

	later := c.now().Add(checkInterval + time.Minute)
	c.now = func() time.Time { return later }
	c.Notice(ctx, "1.1.0")
	if *calls != 2 {
		t.Errorf("detect called %d times, want 2", *calls)
	}
}

func TestNoticeOnError(t *testing.T) {
	c, _ := testChecker(t, nil, false, errors.New("rate limited"))
	if n := c.Notice(context.Background(), "1.0.0"); n != "" {
		t.Errorf("notice = %q, want empty on error", n)
	}
	if entry := c.load(); entry == nil || entry.UpdateAvailable {
		t.Errorf("cache entry = %+v", entry)
	}
}

func TestApplyDevBuild(t *testing.T) {
	c := NewChecker("")
	if _, err := c.Apply(context.Background(), "dev"); !errors.Is(err, ErrDevBuild) {
		t.Errorf("Apply error = %v, want ErrDevBuild", err)
	}
}

func TestDetectInstallMethod(t *testing.T) {
	tests := []struct {
		path string
		want InstallMethod
	}{
		{"", InstallUnknown},
		{"/opt/homebrew/bin/poker", InstallHomebrew},
		{"/usr/local/Cellar/poker/1.0.0/bin/poker", InstallHomebrew},
		{"/home/linuxbrew/.linuxbrew/bin/poker", InstallHomebrew},
		{"/usr/local/bin/poker", InstallBinary},
	}
	for _, tt := range tests {
		if got := DetectInstallMethod(tt.path); got != tt.want {
			t.Errorf("DetectInstallMethod(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNewerVersion(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.2.0", "1.1.9", true},
		{"v2.0.0", "1.9.9", true},
		{"1.0.0", "1.0.0", false},
		{"1.0.0", "1.0.1", false},
		{"1.10.0", "1.9.0", true},
	}
	for _, tt := range tests {
		if got := newerVersion(tt.a, tt.b); got != tt.want {
			t.Errorf("newerVersion(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
