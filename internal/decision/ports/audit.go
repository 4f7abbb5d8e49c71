package ports

import (
	"context"

	"i9score/pkg/platform/audit"
)

// AuditPort defines the interface for emitting scoring audit events.
// It matches audit publisher Emit but is declared here so the decision
// module does not depend on a concrete sink.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
