package events

// Topic constants for domain events emitted by the platform.
const (
	TopicCheckoutCompleted = "checkout.completed"
	TopicCheckoutFailed    = "checkout.failed"
	TopicFeedUpdated       = "feed.updated"
	TopicFeedDeleted       = "feed.deleted"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicCheckoutCompleted,
		TopicCheckoutFailed,
		TopicFeedUpdated,
		TopicFeedDeleted,
	}
}
