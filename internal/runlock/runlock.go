// Package runlock guards against overlapping report runs, for example a
// manual invocation racing the scheduled one.
package runlock

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Locks older than this are treated as leftovers from a crashed run and
// taken over.
const maxAge = 5 * time.Minute

type Lock struct {
	path string
	now  func() time.Time
}

func New(path string) *Lock {
	return &Lock{path: path, now: time.Now}
}

// Acquire claims the lock, failing when a fresh lock file already exists.
func (l *Lock) Acquire() error {
	if raw, err := os.ReadFile(l.path); err == nil {
		if ts, parseErr := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64); parseErr == nil {
			age := l.now().Sub(time.Unix(ts, 0))
			if age < maxAge {
				return fmt.Errorf("another run holds the lock at %s (age %s)", l.path, age.Round(time.Second))
			}
		}
		slog.Warn("taking over stale run lock", "path", l.path)
	}

	stamp := strconv.FormatInt(l.now().Unix(), 10)
	if err := os.WriteFile(l.path, []byte(stamp), 0o644); err != nil {
		return fmt.Errorf("writing run lock: %w", err)
	}
	return nil
}

func (l *Lock) Release() {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("removing run lock", "path", l.path, "error", err)
	}
}
