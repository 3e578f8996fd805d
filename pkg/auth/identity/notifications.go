package identity

import (
	"time"

	"github.com/tidwall/gjson"

	log "github.com/serverless/sfauth/pkg/logger"
)

// ShowNotifications prints the dashboard notifications in data that are due and records when each was
// shown. A notification carries an id (or code), a message and an optional visibilityInterval in hours;
// it is not shown again until that interval has passed. Failures are logged and never fail the command.
func (r *Resolver) ShowNotifications(data *AuthenticatedData) {
	if data == nil {
		return
	}
	now := r.now()
	for _, raw := range data.Notifications {
		n := gjson.ParseBytes(raw)
		id := firstOf(n.Get("id").String(), n.Get("code").String())
		message := n.Get("message").String()
		if id == "" || message == "" {
			continue
		}

		lastShown, found, err := r.store.NotificationLastShown(id)
		if err != nil {
			log.Debug("Failed to read notification history", "id", id, "error", err)
			continue
		}
		interval := time.Duration(n.Get("visibilityInterval").Float() * float64(time.Hour))
		if found && interval > 0 && now.Sub(lastShown) < interval {
			continue
		}

		r.prompter.Warning(message)
		if err := r.store.SetNotificationLastShown(id, now); err != nil {
			log.Debug("Failed to record notification", "id", id, "error", err)
		}
	}
}
