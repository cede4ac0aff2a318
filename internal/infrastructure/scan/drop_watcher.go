package scan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	purchasingapp "github.com/printcloud/backend/internal/application/purchasing"
	"go.uber.org/zap"
)

// settleDelay is how long a dropped file must be quiet before it is
// picked up. Network scanners write large files in bursts.
const settleDelay = 2 * time.Second

// DropWatcher ingests files that office scanners write into a shared
// directory. The drop directory holds one subdirectory per tenant, named
// by tenant ID; files dropped there are uploaded as bill scans for that
// tenant and removed on success.
type DropWatcher struct {
	dir     string
	service *purchasingapp.BillScanService
	logger  *zap.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewDropWatcher creates a watcher over the given drop directory
func NewDropWatcher(dir string, service *purchasingapp.BillScanService, logger *zap.Logger) (*DropWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DropWatcher{
		dir:     dir,
		service: service,
		logger:  logger,
	}, nil
}

// Start begins watching. Existing files in tenant subdirectories are
// picked up first so nothing dropped while the server was down is lost.
func (w *DropWatcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return err
	}

	ctx, w.cancel = context.WithCancel(ctx)

	// Watch existing tenant subdirectories and sweep their backlog.
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		watcher.Close()
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(w.dir, entry.Name())
		if err := watcher.Add(sub); err != nil {
			w.logger.Warn("cannot watch drop subdirectory", zap.String("dir", sub), zap.Error(err))
			continue
		}
		w.sweepExisting(ctx, sub)
	}

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("Scan drop watcher started", zap.String("dir", w.dir))
	return nil
}

// Stop shuts the watcher down
func (w *DropWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.wg.Wait()
}

func (w *DropWatcher) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("drop watcher error", zap.Error(err))
		}
	}
}

func (w *DropWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	// A new tenant subdirectory starts being watched immediately.
	if info.IsDir() {
		if filepath.Dir(event.Name) == w.dir {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("cannot watch drop subdirectory", zap.String("dir", event.Name), zap.Error(err))
			}
		}
		return
	}

	tenantID, ok := w.tenantFor(event.Name)
	if !ok {
		return
	}
	if !isScanFile(event.Name) {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.ingest(ctx, tenantID, event.Name)
	}()
}

// sweepExisting uploads files already present in a tenant subdirectory
func (w *DropWatcher) sweepExisting(ctx context.Context, dir string) {
	tenantID, ok := w.tenantFor(filepath.Join(dir, "x"))
	if !ok {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !isScanFile(path) {
			continue
		}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.ingest(ctx, tenantID, path)
		}()
	}
}

// ingest waits for the file to settle, uploads it, and removes it
func (w *DropWatcher) ingest(ctx context.Context, tenantID uuid.UUID, path string) {
	if !w.waitSettled(ctx, path) {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		w.logger.Warn("cannot open dropped scan", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return
	}

	_, err = w.service.Upload(ctx, tenantID, filepath.Base(path), contentTypeFor(path), f, info.Size())
	if err != nil {
		w.logger.Error("dropped scan upload failed",
			zap.String("path", path),
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return
	}

	if err := os.Remove(path); err != nil {
		w.logger.Warn("cannot remove ingested scan", zap.String("path", path), zap.Error(err))
	}

	w.logger.Info("Dropped scan ingested",
		zap.String("file", filepath.Base(path)),
		zap.String("tenant_id", tenantID.String()))
}

// waitSettled polls until the file size stops changing
func (w *DropWatcher) waitSettled(ctx context.Context, path string) bool {
	var lastSize int64 = -1
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(settleDelay):
		}

		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if info.Size() == lastSize && info.Size() > 0 {
			return true
		}
		lastSize = info.Size()
	}
}

// tenantFor derives the tenant from the parent directory name
func (w *DropWatcher) tenantFor(path string) (uuid.UUID, bool) {
	parent := filepath.Base(filepath.Dir(path))
	tenantID, err := uuid.Parse(parent)
	if err != nil {
		return uuid.Nil, false
	}
	return tenantID, true
}

var scanExtensions = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

func isScanFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	_, ok := scanExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func contentTypeFor(path string) string {
	if ct, ok := scanExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}
