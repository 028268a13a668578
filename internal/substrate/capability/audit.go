package capability

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEntry is one recorded capability decision: a request, a delegation,
// or a revocation.
type AuditEntry struct {
	ID        uuid.UUID
	Timestamp time.Time
	ActorID   uint32
	Operation string // "Request", "Delegate", "Revoke"
	Cap       Capability
	Result    Decision
}

// AuditLog is the append-only, in-memory record of every capability
// decision made during a run, paired with structured logging via zap.
type AuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
	logger  *zap.Logger
}

// NewAuditLog returns an AuditLog that also emits each entry through
// logger. A nil logger is replaced with zap.NewNop().
func NewAuditLog(logger *zap.Logger) *AuditLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLog{logger: logger}
}

// Record appends an entry, stamping it with a fresh UUID, and logs it.
func (l *AuditLog) Record(actorID uint32, operation string, cap Capability, result Decision, timestamp time.Time) AuditEntry {
	entry := AuditEntry{
		ID:        uuid.New(),
		Timestamp: timestamp,
		ActorID:   actorID,
		Operation: operation,
		Cap:       cap,
		Result:    result,
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	l.logger.Info("capability decision",
		zap.String("entry_id", entry.ID.String()),
		zap.Uint32("actor_id", actorID),
		zap.String("operation", operation),
		zap.Stringer("capability", cap.Kind),
		zap.Stringer("result", result),
	)
	return entry
}

// All returns a snapshot of every recorded entry, oldest first.
func (l *AuditLog) All() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ForActor returns the recorded entries for a single actor, oldest first.
// Supplemental query used by the scheduler's debug/introspection surface.
func (l *AuditLog) ForActor(actorID uint32) []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []AuditEntry
	for _, e := range l.entries {
		if e.ActorID == actorID {
			out = append(out, e)
		}
	}
	return out
}
