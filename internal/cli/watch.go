package cli

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/pdasim"
)

// settleDelay lets editors finish writing before a changed file is reloaded.
const settleDelay = 100 * time.Millisecond

// watchBlueprint signals when the blueprint id changes in the engine's loader.
// Bursts of events collapse into one signal. The channel is nil when the loader cannot watch.
func watchBlueprint(ctx context.Context, eng *pdasim.Engine, id string, logger *slog.Logger) <-chan struct{} {
	events, err := eng.Watch(ctx)
	if err != nil {
		logger.Warn("Watch unavailable", "err", err)
		return nil
	}

	changes := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if !matchesBlueprint(event, id) {
					continue
				}
				logger.Debug("Change detected", "event", event)
				time.Sleep(settleDelay)
				select {
				case changes <- struct{}{}:
				default:
				}
			}
		}
	}()
	return changes
}

// matchesBlueprint compares a changed document ID with a blueprint ID, ignoring extensions.
func matchesBlueprint(event, id string) bool {
	event = strings.ReplaceAll(event, "\\", "/")
	if i := strings.LastIndex(event, "."); i > strings.LastIndex(event, "/") {
		event = event[:i]
	}
	return event == id
}
