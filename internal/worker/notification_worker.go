package worker

import (
	"github.com/spec-kit/helper-marketplace/internal/cache"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/service"
)

// StartEventSubscribers attaches every event consumer to the dispatcher:
// notification logging and snapshot invalidation. Either may be nil.
func StartEventSubscribers(dispatcher events.Dispatcher, notifications *service.NotificationService, snapshots *cache.SnapshotCache) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if snapshots != nil && dispatcher != nil {
		snapshots.Subscribe(dispatcher)
	}
}
