package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/manuscript"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 500 * time.Millisecond

// runFunc lets tests observe rebuilds without driving real builders.
type runFunc func(context.Context, Request) (*Outcome, error)

// Watch runs one build, then rebuilds whenever the manuscript or its
// configuration changes. It returns when the context is cancelled; build
// failures are logged and watched through, never fatal.
func Watch(ctx context.Context, req Request) error {
	return watch(ctx, req, Run)
}

func watch(ctx context.Context, req Request, run runFunc) error {
	root := req.ProjectRoot
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return errors.WorkspaceError("resolve working directory", err)
		}
		root = cwd
	}

	bookDir, ok := manuscript.FindBookDir(req.Book, root)
	if !ok {
		return errors.BookNotFound(req.Book)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WorkspaceError("create file watcher", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range watchDirs(bookDir) {
		if err := watcher.Add(dir); err != nil {
			return errors.WorkspaceError("watch "+dir, err)
		}
	}

	slog.Info("Watching manuscript for changes", logfields.Path(bookDir))
	rebuild(ctx, req, run)

	var debounce *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, open := <-watcher.Events:
			if !open {
				return nil
			}
			if !relevantChange(event) {
				continue
			}
			slog.Debug("Manuscript change detected", logfields.Path(event.Name))
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Stop()
				debounce.Reset(watchDebounce)
			}
			pending = debounce.C

		case <-pending:
			pending = nil
			rebuild(ctx, req, run)

		case err, open := <-watcher.Errors:
			if !open {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

// watchDirs lists the directories worth watching: the book root (for
// book.yaml and flat layouts) plus any section directory that exists.
func watchDirs(bookDir string) []string {
	dirs := []string{bookDir}
	for _, section := range []string{
		manuscript.SectionFront, manuscript.SectionChapters, manuscript.SectionBack,
	} {
		dir := filepath.Join(bookDir, section)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// relevantChange filters watcher events down to manuscript edits: markdown
// writes, creates, renames, and configuration changes.
func relevantChange(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	return strings.HasSuffix(name, ".md") || name == config.ConfigFileName
}

func rebuild(ctx context.Context, req Request, run runFunc) {
	fmt.Println()
	start := time.Now()
	if _, err := run(ctx, req); err != nil {
		slog.Warn("Build failed, watching for changes", logfields.Error(err))
		return
	}
	slog.Info("Build finished, watching for changes",
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}
