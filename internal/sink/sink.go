// Package sink delivers finalized records to their destination.
//
// Serialization is the consumer's concern, not the parser's; the CLI
// picks one of these sinks. JSONL writes one JSON object per line for
// downstream ETL; Postgres bulk-loads records into a JSONB staging
// table via the COPY protocol.
package sink

import (
	"context"

	"github.com/NaturalHistoryMuseum/KEParser/keparser"
)

// Sink receives finalized records one at a time, in emission order.
type Sink interface {
	Write(ctx context.Context, rec *keparser.Record) error

	// Close flushes buffered records and releases resources. A sink is
	// unusable afterwards.
	Close(ctx context.Context) error
}
