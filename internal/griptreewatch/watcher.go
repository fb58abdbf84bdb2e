// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package griptreewatch implements `tree watch`, a convenience that
// watches active griptrees for external removal (a worktree deleted
// with rm -rf outside gitgrip, or its pointer file going missing) and
// reports it instead of letting `tree list`/`tree remove` discover a
// stale registry entry later.
package griptreewatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/archmagece/gitgrip/internal/griptree"
)

// EventType classifies a watch event.
type EventType string

const (
	// EventRemoved fires when a previously-present griptree's path or
	// pointer file disappears.
	EventRemoved EventType = "removed"

	// EventAdded fires the first time the watcher sees a registered
	// griptree, including every griptree already registered at Start.
	EventAdded EventType = "added"
)

// Event reports one griptree's change in state.
type Event struct {
	Branch    string
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Logger defines the logging interface the watcher writes progress to.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Options configures watcher behavior.
type Options struct {
	// ReconcileInterval is how often the watcher re-lists the registry
	// to catch removals fsnotify missed (e.g. a whole tree deleted
	// while gitgrip wasn't running). Defaults to 5 seconds.
	ReconcileInterval time.Duration
	Logger            Logger
}

// Watcher monitors active griptrees for external removal.
type Watcher interface {
	Start(ctx context.Context) error
	Events() <-chan Event
	Errors() <-chan error
	Stop() error
}

type watcher struct {
	manager  *griptree.Manager
	fswatch  *fsnotify.Watcher
	options  Options
	events   chan Event
	errors   chan error
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.RWMutex
	watching map[string]string // path -> branch
	logger   Logger
}

// New creates a watcher over the griptrees tracked by manager.
func New(manager *griptree.Manager, options Options) (Watcher, error) {
	if options.ReconcileInterval == 0 {
		options.ReconcileInterval = 5 * time.Second
	}
	if options.Logger == nil {
		options.Logger = &noopLogger{}
	}

	fswatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("griptreewatch: create file watcher: %w", err)
	}

	return &watcher{
		manager:  manager,
		fswatch:  fswatch,
		options:  options,
		events:   make(chan Event, 32),
		errors:   make(chan error, 16),
		watching: make(map[string]string),
		logger:   options.Logger,
	}, nil
}

// Start begins monitoring. It does an initial reconciliation pass so
// griptrees already registered are watched from the first tick.
func (w *watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	if err := w.reconcile(); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.eventLoop(ctx)
	return nil
}

func (w *watcher) Events() <-chan Event { return w.events }
func (w *watcher) Errors() <-chan error { return w.errors }

func (w *watcher) Stop() error {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	var closeErr error
	if w.fswatch != nil {
		if err := w.fswatch.Close(); err != nil {
			closeErr = fmt.Errorf("griptreewatch: close file watcher: %w", err)
		}
	}
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return closeErr
}

func (w *watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.options.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := w.reconcile(); err != nil {
				w.sendError(ctx, err)
			}

		case fsEvent, ok := <-w.fswatch.Events:
			if !ok {
				return
			}
			if fsEvent.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.logger.Debug("griptreewatch: fs event %s %s", fsEvent.Op, fsEvent.Name)
				if err := w.reconcile(); err != nil {
					w.sendError(ctx, err)
				}
			}

		case err, ok := <-w.fswatch.Errors:
			if !ok {
				return
			}
			w.sendError(ctx, err)
		}
	}
}

// reconcile re-lists the registry, emitting EventAdded for new entries
// and EventRemoved for ones whose path has gone missing since the last
// pass, and keeps the fsnotify watch list in sync.
func (w *watcher) reconcile() error {
	entries, err := w.manager.List()
	if err != nil {
		return fmt.Errorf("griptreewatch: list griptrees: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.Path] = true

		if _, tracked := w.watching[e.Path]; !tracked && !e.Missing {
			if err := w.fswatch.Add(e.Path); err != nil {
				w.logger.Warn("griptreewatch: watch %s: %v", e.Path, err)
			}
			w.watching[e.Path] = e.Branch
			w.emit(Event{Branch: e.Branch, Path: e.Path, Type: EventAdded, Timestamp: w.now()})
			continue
		}

		if e.Missing {
			if _, tracked := w.watching[e.Path]; tracked {
				_ = w.fswatch.Remove(e.Path)
				delete(w.watching, e.Path)
				w.emit(Event{Branch: e.Branch, Path: e.Path, Type: EventRemoved, Timestamp: w.now()})
			}
		}
	}

	for path, branch := range w.watching {
		if !seen[path] {
			_ = w.fswatch.Remove(path)
			delete(w.watching, path)
			w.emit(Event{Branch: branch, Path: path, Type: EventRemoved, Timestamp: w.now()})
		}
	}

	return nil
}

// emit is called with w.mu held; it must never block, so a full event
// channel drops the event rather than deadlocking reconcile.
func (w *watcher) emit(evt Event) {
	select {
	case w.events <- evt:
	default:
		w.logger.Warn("griptreewatch: event channel full, dropping %s event for %s", evt.Type, evt.Path)
	}
}

func (w *watcher) sendError(ctx context.Context, err error) {
	select {
	case w.errors <- err:
	case <-ctx.Done():
	default:
		w.logger.Warn("griptreewatch: error channel full, dropping: %v", err)
	}
}

func (w *watcher) now() time.Time { return time.Now() }

type noopLogger struct{}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}
