// Package mail sends transactional email such as address verification.
package mail

import (
	"context"
	"net/mail"
)

type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}
