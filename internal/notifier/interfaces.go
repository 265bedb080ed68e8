package notifier

import "gopkg.in/telebot.v4"

// API is the subset of the telebot client the notifier relies on.
type API interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}
