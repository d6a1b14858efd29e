// Package scheduler runs the background readiness watch: poll the glucose
// feed on an aligned interval, assess against the latest model, and notify
// when the level changes.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/psjostrom/springa/internal/cgm"
	"github.com/psjostrom/springa/internal/config"
	"github.com/psjostrom/springa/internal/model"
	"github.com/psjostrom/springa/internal/readiness"
	"github.com/psjostrom/springa/internal/store"
)

type Watcher struct {
	glucose  *cgm.Client
	assessor *readiness.Assessor
	db       *store.DB
	category model.Category
	interval time.Duration
	notify   bool
	logger   *slog.Logger

	lastLevel model.ReadinessLevel
}

func New(glucose *cgm.Client, assessor *readiness.Assessor, db *store.DB, category model.Category, interval time.Duration, notify bool, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Watcher{
		glucose:  glucose,
		assessor: assessor,
		db:       db,
		category: category,
		interval: interval,
		notify:   notify,
		logger:   logger,
	}
}

func (w *Watcher) Run(ctx context.Context) error {
	if err := w.writePID(); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer w.removePID()

	fmt.Printf("Readiness watch started (interval: %s, category: %s)\n", w.interval, w.category)

	for {
		nextTick := nextAlignedTick(time.Now(), w.interval)

		select {
		case <-ctx.Done():
			fmt.Println("\nWatch stopped.")
			return nil
		case <-time.After(time.Until(nextTick)):
		}

		w.check(ctx)
	}
}

func (w *Watcher) check(ctx context.Context) {
	reading, err := w.glucose.Latest(ctx)
	if err != nil {
		w.logger.Warn("glucose fetch failed", "error", err)
		return
	}

	m, err := w.db.LoadLatestModel()
	if err != nil {
		w.logger.Warn("loading model failed", "error", err)
	}

	guidance := w.assessor.Assess(*reading, m, w.category)
	w.logger.Info("readiness check",
		"mmol", reading.Mmol,
		"level", guidance.Level,
		"reasons", len(guidance.Reasons))
	fmt.Printf("%s  BG %.1f mmol/L  %s\n",
		time.Now().Format("15:04"), reading.Mmol, guidance.Level)

	if w.notify && guidance.Level != w.lastLevel && guidance.Level != model.LevelReady {
		if err := readiness.Notify(guidance); err != nil {
			w.logger.Warn("notification failed", "error", err)
		}
	}
	w.lastLevel = guidance.Level
}

func nextAlignedTick(now time.Time, interval time.Duration) time.Time {
	mins := int(interval.Minutes())
	if mins <= 0 {
		mins = 5
	}

	currentMinute := now.Minute()
	nextMinute := ((currentMinute / mins) + 1) * mins

	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	return next.Add(time.Duration(nextMinute) * time.Minute)
}

func pidPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "springa.pid"), nil
}

func (w *Watcher) writePID() error {
	path, err := pidPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (w *Watcher) removePID() {
	if path, err := pidPath(); err == nil {
		os.Remove(path)
	}
}

// ReadPID returns the PID of a running watch, for the stop command.
func ReadPID() (int, error) {
	path, err := pidPath()
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("no running watch found")
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file")
	}

	return pid, nil
}
