// Package noop provides inert adapter implementations.
package noop

import "context"

// NotificationAdapter discards all messages. It backs disabled
// notifications and dry-run mode.
type NotificationAdapter struct{}

// NewNotificationAdapter creates a no-op notification adapter.
func NewNotificationAdapter() *NotificationAdapter {
	return &NotificationAdapter{}
}

// Send does nothing and returns nil.
func (n *NotificationAdapter) Send(ctx context.Context, mailboxPath, to, subject, body string) error {
	return nil
}
