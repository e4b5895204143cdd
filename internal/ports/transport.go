package ports

import "context"

// TransportPort delivers one encoded request and returns the raw reply.
// Timeouts, retries, proxies and TLS belong to the implementation.
type TransportPort interface {
	Send(ctx context.Context, action string, body []byte) ([]byte, error)
}
