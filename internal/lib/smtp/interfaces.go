// Package smtp provides the mail transport used by the report sender.
package smtp

import "io"

// Client is the subset of an SMTP session the sender needs.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface abstracts connection setup so tests can substitute a
// fake session.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
