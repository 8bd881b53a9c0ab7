package policy

import (
	"context"

	"github.com/google/uuid"
)

// Decision is one authorization outcome, reported to an external sink
// instead of being logged inline in the engine.
type Decision struct {
	ActorID  uuid.UUID
	Action   string
	Resource string
	Allowed  bool
}

type AuditSink interface {
	Decision(ctx context.Context, d Decision)
}

// NopAudit discards decisions; services fall back to it when no sink is
// wired.
type NopAudit struct{}

func (NopAudit) Decision(ctx context.Context, d Decision) {}
