// Package translate defines the client side of the remote SQL translation
// service. The service itself is opaque: it accepts SQL text and returns
// translated SQL text. Everything this tool knows about it fits behind the
// Translator interface.
package translate

import (
	"context"
)

// Translator converts a single SQL document from the source dialect to the
// target dialect. Implementations must be safe for concurrent use; the
// pipeline translates files in parallel.
type Translator interface {
	// Translate submits the SQL text of the named file and returns the
	// translated text.
	Translate(ctx context.Context, name, sql string) (string, error)
}

// Passthrough returns input unchanged. Used for dry runs, and for verifying
// the substitution round trip without a translation service.
type Passthrough struct{}

// Translate implements Translator.
func (Passthrough) Translate(_ context.Context, _ string, sql string) (string, error) {
	return sql, nil
}
