package types

import (
	"strings"
	"testing"
)

func TestNewSnapshotIDPrefix(t *testing.T) {
	id := NewSnapshotID()
	if !strings.HasPrefix(id, "snap_") {
		t.Errorf("snapshot ID %q should have the snap_ prefix", id)
	}
	if id == NewSnapshotID() {
		t.Error("consecutive snapshot IDs should differ")
	}
}
