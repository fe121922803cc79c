package app

import (
	"testing"

	"ftl-go/internal/testutil"
)

func TestNewOperation(t *testing.T) {
	clock := testutil.FixedClock()
	idgen := testutil.NewStubIDGenerator()

	tests := []struct {
		name   string
		op     string
		wantID string
	}{
		{name: "first operation", op: "Build", wantID: "build-1"},
		{name: "second operation", op: "Collect", wantID: "build-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation(tt.op, idgen, clock)

			if op.Name != tt.op {
				t.Errorf("Name = %q, want %q", op.Name, tt.op)
			}
			if op.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", op.ID, tt.wantID)
			}
			if op.Status != "success" {
				t.Errorf("Status = %q, want %q", op.Status, "success")
			}
			if !op.StartedAt.Equal(clock.Now()) {
				t.Errorf("StartedAt = %v, want %v", op.StartedAt, clock.Now())
			}
		})
	}
}

func TestOperation_Fail(t *testing.T) {
	op := NewOperation("Build", testutil.NewStubIDGenerator(), testutil.FixedClock())
	if op.Failed() {
		t.Fatal("new operation reports failure")
	}
	op.Fail()
	if !op.Failed() || op.Status != "error" {
		t.Errorf("Status = %q after Fail()", op.Status)
	}
}
