// Package messaging fans ledger entries out to downstream consumers (SIEM
// ingest, dashboards) without coupling the engine to a broker.
package messaging

import "context"

// Publisher publishes fire-and-forget messages to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close()
}

// Subject prefixes for ledger fan-out. Entries are published to
// "sentinel.ledger.<category>".
const SubjectLedgerPrefix = "sentinel.ledger."

// NoopPublisher drops every message. Used when fan-out is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, data []byte) error { return nil }
func (NoopPublisher) Close()                                                         {}
