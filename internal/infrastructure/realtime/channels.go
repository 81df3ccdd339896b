package realtime

import (
	"github.com/google/uuid"

	"github.com/visaflow/backend/internal/domain/payment"
)

// Logical channel names. The transport maps these onto whatever
// addressing it has; subscribers pick channels by role.
const (
	// AdminChannel receives every mutation
	AdminChannel = "channel:admin"
	// ManagerRoleChannel receives approval-workflow events
	ManagerRoleChannel = "channel:role:manager"
)

// UserChannel is the owning actor's private channel
func UserChannel(actorID uuid.UUID) string {
	return "channel:user:" + actorID.String()
}

// ChannelsFor returns every channel one event reaches: the acting
// user's private channel, the admin channel, and the role channels
// relevant to the action. Approval decisions also reach managers, who
// own the pending queue.
func ChannelsFor(action string, actorID uuid.UUID) []string {
	channels := []string{UserChannel(actorID), AdminChannel}
	switch action {
	case payment.ActionApproved, payment.ActionRejected:
		channels = append(channels, ManagerRoleChannel)
	}
	return channels
}
