package realtime

// Named realtime streams used across the platform.
const (
	StreamNotifications = "notifications"
	StreamInvites       = "invites"
	StreamStatuses      = "statuses"
	StreamPresence      = "presence"
)

// KnownStreams returns the streams a client may subscribe to.
func KnownStreams() []string {
	return []string{StreamNotifications, StreamInvites, StreamStatuses, StreamPresence}
}
