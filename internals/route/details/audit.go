package details

import (
	"os"

	logmw "laboissim_backend/internals/middlewares/logger"
	"laboissim_backend/internals/policy"
)

// auditSink is shared by every service the routes build. Set
// AUDIT_VERBOSE to also log allowed decisions.
func auditSink() policy.AuditSink {
	return logmw.LogAudit{Verbose: os.Getenv("AUDIT_VERBOSE") != ""}
}
