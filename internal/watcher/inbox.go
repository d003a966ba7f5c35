package watcher

import (
	"context"
	"errors"
	"os"

	"github.com/hyperjump/resumatch/internal/config"
	"github.com/hyperjump/resumatch/internal/models"
	"go.uber.org/zap"
)

// Ingester indexes a resume found on disk, deriving its contact metadata from the text.
type Ingester interface {
	IngestDiscovered(ctx context.Context, path string) (string, error)
}

// Inbox ingests resumes dropped into the configured directories. A file that is
// ingested is removed from the inbox; the upload directory keeps the stored copy.
// Files that fail stay where they are and are retried on the next start.
type Inbox struct {
	watcher  *Watcher
	ingester Ingester
	logger   *zap.Logger
	ctx      context.Context
}

// NewInbox creates an inbox over cfg.Directories.
func NewInbox(cfg config.InboxConfig, ingester Ingester, opts ...WatcherOption) *Inbox {
	in := &Inbox{ingester: ingester, ctx: context.Background()}
	in.watcher = NewWatcher(cfg.Directories, cfg.Extensions, cfg.RecursiveOrDefault(), in.handle, opts...)
	in.logger = in.watcher.logger
	return in
}

// Start watches the inbox directories and ingests files already present.
func (in *Inbox) Start(ctx context.Context) error {
	in.ctx = ctx
	if err := in.watcher.Start(ctx); err != nil {
		return err
	}
	in.logger.Info("resume inbox watching", zap.Strings("directories", in.watcher.Directories()))
	go in.watcher.SyncExistingFiles()
	return nil
}

// Stop stops watching.
func (in *Inbox) Stop() {
	in.watcher.Stop()
}

// Directories returns the watched inbox directories.
func (in *Inbox) Directories() []string {
	return in.watcher.Directories()
}

func (in *Inbox) handle(path string) {
	if _, err := in.Process(in.ctx, path); err != nil {
		in.logger.Warn("inbox resume not ingested", zap.String("path", path), zap.Error(err))
	}
}

// Process ingests one inbox file and removes it on success.
func (in *Inbox) Process(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	id, err := in.ingester.IngestDiscovered(ctx, path)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			in.logger.Info("inbox resume has no usable contact details", zap.String("path", path))
		}
		return "", err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		in.logger.Warn("inbox file not removed after ingest", zap.String("path", path), zap.Error(err))
	}
	in.logger.Info("inbox resume ingested", zap.String("path", path), zap.String("candidate_id", id))
	return id, nil
}
