package server

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alberto-moreno-sa/notion-blog/internal/render"
)

const debounceDuration = 500 * time.Millisecond

// WatchTemplates reloads the templates in dir whenever a file in it changes,
// until ctx is cancelled. A template that fails to parse keeps the previous
// renderer in place.
func (s *Server) WatchTemplates(ctx context.Context, dir, siteTitle string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				s.infoLog.Printf("Template change detected: %s (%s)", event.Name, event.Op)

				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounceDuration, func() {
					rd, err := render.New(siteTitle, dir)
					if err != nil {
						s.errorLog.Printf("reload templates: %v", err)
						return
					}
					s.SetRenderer(rd)
					s.infoLog.Println("Templates reloaded")
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.errorLog.Printf("watcher error: %v", err)
			}
		}
	}()

	s.infoLog.Printf("Watching templates in %s", dir)
	return nil
}
