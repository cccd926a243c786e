// Package watch scores a draft file each time it is saved.
package watch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/rossmatican/thoughtleaderai/internal/ingest"
	"github.com/rossmatican/thoughtleaderai/internal/logging"
	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/session"
	"github.com/rossmatican/thoughtleaderai/internal/stats"
)

// DefaultDebounce is the quiet period after a save before re-scoring.
const DefaultDebounce = 500 * time.Millisecond

// Options configure a watch run.
type Options struct {
	Path     string
	Debounce time.Duration
	In       io.Reader
	Out      io.Writer
	UseColor bool
	Logger   *slog.Logger

	// MetricsAddr and MetricsHandler start a side HTTP listener when both are set.
	MetricsAddr    string
	MetricsHandler http.Handler
}

// Run watches opts.Path until ctx is cancelled. Lines read from opts.In resolve the active prompt; an empty line dismisses it.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to stat draft: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer closeWatcher(watcher, opts.Logger)
	// Editors often save by renaming a temp file over the draft, so the
	// directory is watched rather than the file.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	l := &loop{
		sess:   sess,
		path:   path,
		opts:   opts,
		runner: session.NewRunner(sess, opts.Debounce),
		lines:  readLines(gctx, opts.In),
		log:    opts.Logger,
	}
	g.Go(func() error {
		defer cancel()
		return l.run(gctx, watcher)
	})
	if opts.MetricsAddr != "" && opts.MetricsHandler != nil {
		g.Go(func() error {
			return serveMetrics(gctx, opts.MetricsAddr, opts.MetricsHandler, opts.Logger)
		})
	}
	return g.Wait()
}

type loop struct {
	sess   *session.Session
	path   string
	opts   Options
	runner *session.Runner
	lines  <-chan string
	log    *slog.Logger
}

func (l *loop) run(ctx context.Context, watcher *fsnotify.Watcher) error {
	defer l.runner.Close()
	l.submit(ctx)
	fmt.Fprintf(l.opts.Out, "watching %s (Ctrl+C to stop)\n", l.path)

	lines := l.lines
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != l.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				l.submit(ctx)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal.
			l.log.Warn("watcher error", "err", err)

		case snap := <-l.runner.Results():
			l.printSnapshot(snap)

		case line, ok := <-lines:
			if !ok {
				// Input closed; keep watching without prompt resolution.
				lines = nil
				continue
			}
			l.resolve(ctx, line)
		}
	}
}

func (l *loop) submit(ctx context.Context) {
	text, err := ingest.ReadText(l.path)
	if err != nil {
		// The file can briefly vanish mid-save.
		if !errors.Is(err, os.ErrNotExist) {
			l.log.Warn("failed to read draft", "path", l.path, "err", err)
		}
		return
	}
	l.runner.Submit(ctx, text)
}

func (l *loop) resolve(ctx context.Context, line string) {
	if l.sess.Active() == nil {
		return
	}
	line = strings.TrimSpace(line)
	var err error
	if line == "" {
		_, err = l.sess.Dismiss(ctx)
		if err == nil {
			fmt.Fprintln(l.opts.Out, "prompt dismissed")
		}
	} else {
		_, err = l.sess.Respond(ctx, line)
		if err == nil {
			fmt.Fprintln(l.opts.Out, "response recorded")
		}
	}
	if err != nil && !errors.Is(err, session.ErrNoActiveIntervention) {
		l.log.Warn("failed to resolve prompt", "err", err)
	}
}

func (l *loop) printSnapshot(snap model.Snapshot) {
	fmt.Fprint(l.opts.Out, FormatSnapshot(snap, l.opts.UseColor))
}

// FormatSnapshot renders a snapshot as a status line, followed by the
// prompt when one was raised.
func FormatSnapshot(snap model.Snapshot, useColor bool) string {
	var b strings.Builder
	at := snap.At.Format("15:04:05")
	if !snap.Scored {
		fmt.Fprintf(&b, "[%s] %d words, too short to score\n", at, snap.WordCount)
	} else {
		score := stats.ColorScore(stats.Label(snap.CognitiveScore), snap.CognitiveScore, useColor)
		fmt.Fprintf(&b, "[%s] %s  ai %d  words %d", at, score, snap.AIScore, snap.WordCount)
		if snap.HasBaseline {
			fmt.Fprintf(&b, "  drift %.2f", snap.VoiceDrift)
		}
		b.WriteString("\n")
	}
	if iv := snap.Intervention; iv != nil {
		fmt.Fprintf(&b, "\n  ? %s\n  (type a response and press Enter, or press Enter to dismiss)\n\n", iv.PromptText)
	}
	return b.String()
}

// readLines forwards lines from r until it ends. The reader goroutine may
// outlive ctx when r blocks, so it is not part of the errgroup.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	if r == nil {
		return nil
	}
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func closeWatcher(w io.Closer, log *slog.Logger) {
	if err := w.Close(); err != nil {
		log.Warn("failed to close watcher", "err", err)
	}
}

func serveMetrics(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}
