package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/assets"
	"github.com/Faultbox/meshkit/internal/logger"
)

// settle is how long a file must stay quiet before it is re-parsed;
// editors often write a file in several steps.
const settle = 150 * time.Millisecond

func (a *app) cmdWatch(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool watch <file>")
		return errUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m, name, err := a.open(args[0])
	if err != nil {
		return err
	}
	return watchFile(ctx, m, args[0], name, func(asset *assets.Asset, err error) {
		if err != nil {
			fmt.Fprintf(a.out, "FAIL  %s: %v\n", args[0], err)
			return
		}
		fmt.Fprintf(a.out, "ok    %s (%d vertices, %d triangles)\n",
			args[0], asset.Mesh.VertexCount(), asset.Mesh.TriangleCount())
	})
}

// watchFile reports the parse result of file once, then again after every
// change until ctx is done. The directory is watched rather than the file
// so that editors replacing the file by rename are still seen.
func watchFile(ctx context.Context, m *assets.Manager, file, name string, report func(*assets.Asset, error)) error {
	log := logger.Named("watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(file), err)
	}

	reload := func() {
		m.Invalidate(name)
		asset, err := m.LoadAsset(name)
		if err != nil {
			log.Warn("reload failed", zap.String("path", file), zap.Error(err))
		} else {
			log.Info("reloaded",
				zap.String("path", file),
				zap.Int("vertices", asset.Mesh.VertexCount()),
				zap.Int("triangles", asset.Mesh.TriangleCount()),
			)
		}
		report(asset, err)
	}
	reload()

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				log.Debug("change", zap.String("event", event.Op.String()))
				timer.Reset(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			reload()
		}
	}
}
