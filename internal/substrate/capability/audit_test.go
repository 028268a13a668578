package capability

import (
	"testing"
	"time"
)

func TestAuditLogRecordAndAll(t *testing.T) {
	log := NewAuditLog(nil)
	ts := time.Unix(1700000000, 0).UTC()

	entry := log.Record(7, "Request", Capability{Kind: IoPersist}, Granted, ts)
	if entry.ActorID != 7 || entry.Operation != "Request" || entry.Result != Granted {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.ID.String() == "" {
		t.Fatalf("expected a populated UUID")
	}

	all := log.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(all))
	}
	if all[0].ID != entry.ID {
		t.Fatalf("All() entry should match the recorded entry")
	}
}

func TestAuditLogForActorFiltersByActor(t *testing.T) {
	log := NewAuditLog(nil)
	ts := time.Unix(1700000000, 0).UTC()

	log.Record(1, "Request", Capability{Kind: IoPersist}, Granted, ts)
	log.Record(2, "Request", Capability{Kind: IoNetwork}, Denied, ts)
	log.Record(1, "Revoke", Capability{Kind: IoPersist}, Granted, ts)

	entries := log.ForActor(1)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for actor 1, got %d", len(entries))
	}
	for _, e := range entries {
		if e.ActorID != 1 {
			t.Fatalf("ForActor(1) returned an entry for actor %d", e.ActorID)
		}
	}

	if entries := log.ForActor(99); len(entries) != 0 {
		t.Fatalf("expected no entries for an unused actor, got %d", len(entries))
	}
}

func TestAuditLogAllReturnsIndependentSnapshot(t *testing.T) {
	log := NewAuditLog(nil)
	ts := time.Unix(1700000000, 0).UTC()
	log.Record(1, "Request", Capability{Kind: IoPersist}, Granted, ts)

	snapshot := log.All()
	log.Record(1, "Revoke", Capability{Kind: IoPersist}, Granted, ts)

	if len(snapshot) != 1 {
		t.Fatalf("snapshot should not observe later writes, got %d entries", len(snapshot))
	}
	if len(log.All()) != 2 {
		t.Fatalf("expected 2 entries after second Record, got %d", len(log.All()))
	}
}
