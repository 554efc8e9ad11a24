package services

// Notifier delivers a push message to a user. Implementations are
// fire-and-forget from the coordinators' point of view: delivery failure
// is logged by the caller and never rolls back or surfaces from the
// primary operation.
type Notifier interface {
	Send(userID, title, body, url string) error
}

// NopNotifier discards every notification. Used in tests and when no push
// relay is configured.
type NopNotifier struct{}

func (NopNotifier) Send(userID, title, body, url string) error { return nil }
