package shortcuts

import (
	"github.com/nats-io/nats.go"
)

var _ Publisher = (*nats.Conn)(nil)

// Connect opens a NATS connection for publishing card updates. An empty
// token connects without authentication.
func Connect(url, token string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("cardkeeper"),
	}

	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	return nats.Connect(url, opts...)
}
