package logger

import (
	"context"
	"log"

	"laboissim_backend/internals/policy"
)

// LogAudit writes authorization decisions to the process log. Denied
// decisions are the interesting ones; allowed ones stay quiet unless
// AUDIT_VERBOSE is handled by the caller.
type LogAudit struct {
	// Verbose also logs allowed decisions.
	Verbose bool
}

func (a LogAudit) Decision(ctx context.Context, d policy.Decision) {
	if d.Allowed && !a.Verbose {
		return
	}
	verdict := "DENY"
	if d.Allowed {
		verdict = "ALLOW"
	}
	log.Printf("[AUDIT] %s actor=%s action=%s resource=%s", verdict, d.ActorID, d.Action, d.Resource)
}

var _ policy.AuditSink = LogAudit{}
