package domain

import (
	"errors"
	"testing"
)

func mustLocation(t *testing.T) *Location {
	t.Helper()
	pk, err := NewLocationPK("AISL", "AISL", "0001", "0002", "0000")
	if err != nil {
		t.Fatalf("NewLocationPK() error = %v", err)
	}
	location, err := NewLocation(pk, "PACKING_ZONE")
	if err != nil {
		t.Fatalf("NewLocation() error = %v", err)
	}
	location.ClearDomainEvents()
	return location
}

func TestNewLocation(t *testing.T) {
	t.Run("creates location in the unlocked state", func(t *testing.T) {
		pk, _ := NewLocationPK("FGIN", "0001", "0001", "0002", "0000")
		location, err := NewLocation(pk, "RECEIVING")
		if err != nil {
			t.Fatalf("NewLocation() error = %v", err)
		}

		if location.ErrorCode != ErrorCodeAllNotSet {
			t.Errorf("ErrorCode = %q, want %q", location.ErrorCode, ErrorCodeAllNotSet)
		}
		if location.GroupName != "RECEIVING" {
			t.Errorf("GroupName = %q, want RECEIVING", location.GroupName)
		}
		if location.Version != 0 {
			t.Errorf("Version = %d, want 0", location.Version)
		}
		if location.PKey == "" {
			t.Error("PKey is empty")
		}
		if location.TargetKey() != "FGIN/0001/0001/0002/0000" {
			t.Errorf("TargetKey() = %q", location.TargetKey())
		}
	})

	t.Run("emits LocationCreatedEvent", func(t *testing.T) {
		pk, _ := NewLocationPK("FGIN", "0001", "0001", "0002", "0000")
		location, _ := NewLocation(pk, "")
		events := location.GetDomainEvents()
		if len(events) != 1 {
			t.Fatalf("len(events) = %d, want 1", len(events))
		}
		if events[0].EventType() != "location.created" {
			t.Errorf("EventType() = %q", events[0].EventType())
		}
	})

	t.Run("rejects invalid natural key", func(t *testing.T) {
		_, err := NewLocation(LocationPK{}, "")
		if !errors.Is(err, ErrInvalidLocationKey) {
			t.Errorf("NewLocation() error = %v, want ErrInvalidLocationKey", err)
		}
	})
}

func TestLocation_ApplyAllocationLock(t *testing.T) {
	tests := []struct {
		name string
		mode LockMode
		want ErrorCode
	}{
		{"mode IN locks infeed", LockModeIn, ErrorCode("*******1")},
		{"mode OUT locks outfeed", LockModeOut, ErrorCode("******1*")},
		{"mode IN_AND_OUT locks both", LockModeInAndOut, ErrorCode("******11")},
		{"mode NONE unlocks both", LockModeNone, ErrorCode("******00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			location := mustLocation(t)

			if err := location.ApplyAllocationLock(tt.mode); err != nil {
				t.Fatalf("ApplyAllocationLock(%v) error = %v", tt.mode, err)
			}
			if location.ErrorCode != tt.want {
				t.Errorf("ErrorCode = %q, want %q", location.ErrorCode, tt.want)
			}
		})
	}

	t.Run("rejects invalid mode", func(t *testing.T) {
		location := mustLocation(t)
		if err := location.ApplyAllocationLock(LockMode("SIDEWAYS")); !errors.Is(err, ErrInvalidLockMode) {
			t.Errorf("ApplyAllocationLock() error = %v, want ErrInvalidLockMode", err)
		}
	})

	t.Run("emits TargetLockChangedEvent with lock type", func(t *testing.T) {
		location := mustLocation(t)
		_ = location.ApplyAllocationLock(LockModeIn)

		var lockEvent *TargetLockChangedEvent
		for _, e := range location.GetDomainEvents() {
			if le, ok := e.(*TargetLockChangedEvent); ok {
				lockEvent = le
			}
		}
		if lockEvent == nil {
			t.Fatal("no TargetLockChangedEvent emitted")
		}
		if lockEvent.LockType != string(AllocationLock) {
			t.Errorf("LockType = %q, want %q", lockEvent.LockType, AllocationLock)
		}
		if lockEvent.OperationMode != string(LockModeIn) {
			t.Errorf("OperationMode = %q, want %q", lockEvent.OperationMode, LockModeIn)
		}
		if lockEvent.TargetBK != location.TargetKey() {
			t.Errorf("TargetBK = %q, want %q", lockEvent.TargetBK, location.TargetKey())
		}
	})
}

func TestLocation_ApplyOperationLock(t *testing.T) {
	location := mustLocation(t)
	err := location.ApplyOperationLock(LockModeIn)
	if !errors.Is(err, ErrOperationLockUnsupported) {
		t.Errorf("ApplyOperationLock() error = %v, want ErrOperationLockUnsupported", err)
	}
	if location.ErrorCode != ErrorCodeAllNotSet {
		t.Errorf("ErrorCode mutated to %q on unsupported operation", location.ErrorCode)
	}
}

func TestLocation_PermanentLockRoundTrip(t *testing.T) {
	location := mustLocation(t)

	reAlloc := true
	if err := location.ApplyPermanentLock(&reAlloc); err != nil {
		t.Fatalf("ApplyPermanentLock() error = %v", err)
	}
	if !location.InfeedBlocked() || !location.OutfeedBlocked() {
		t.Errorf("after lock: infeed blocked = %v, outfeed blocked = %v, want both true",
			location.InfeedBlocked(), location.OutfeedBlocked())
	}

	if err := location.ReleasePermanentLock(); err != nil {
		t.Fatalf("ReleasePermanentLock() error = %v", err)
	}
	if location.InfeedBlocked() || location.OutfeedBlocked() {
		t.Errorf("after release: infeed blocked = %v, outfeed blocked = %v, want both false",
			location.InfeedBlocked(), location.OutfeedBlocked())
	}

	var lockEvents []*TargetLockChangedEvent
	for _, e := range location.GetDomainEvents() {
		if le, ok := e.(*TargetLockChangedEvent); ok {
			lockEvents = append(lockEvents, le)
		}
	}
	if len(lockEvents) != 2 {
		t.Fatalf("len(lockEvents) = %d, want 2", len(lockEvents))
	}
	if lockEvents[0].ReAllocation == nil || !*lockEvents[0].ReAllocation {
		t.Error("lock event did not forward reAllocation=true")
	}
	if lockEvents[1].ReAllocation != nil {
		t.Error("release event carries a reAllocation flag")
	}
}
