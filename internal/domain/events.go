package domain

import "time"

// DomainEvent is implemented by all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// TargetLockChangedEvent is emitted after every successful lock state transition
type TargetLockChangedEvent struct {
	TargetBK      string    `json:"targetBK"`
	LockType      string    `json:"lockType"`
	OperationMode string    `json:"operationMode"`
	ReAllocation  *bool     `json:"reAllocation,omitempty"`
	ChangedAt     time.Time `json:"changedAt"`
}

func (e *TargetLockChangedEvent) EventType() string     { return "target.lock.changed" }
func (e *TargetLockChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// LocationCreatedEvent is emitted when a location is created
type LocationCreatedEvent struct {
	LocationID string    `json:"locationId"`
	GroupName  string    `json:"groupName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *LocationCreatedEvent) EventType() string     { return "location.created" }
func (e *LocationCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// LocationStateChangedEvent is emitted when a location's error code changes
type LocationStateChangedEvent struct {
	LocationID string    `json:"locationId"`
	ErrorCode  string    `json:"errorCode"`
	ChangedAt  time.Time `json:"changedAt"`
}

func (e *LocationStateChangedEvent) EventType() string     { return "location.state.changed" }
func (e *LocationStateChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// LocationGroupCreatedEvent is emitted when a location group is created
type LocationGroupCreatedEvent struct {
	Name       string    `json:"name"`
	ParentName string    `json:"parentName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *LocationGroupCreatedEvent) EventType() string     { return "locationgroup.created" }
func (e *LocationGroupCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// GroupStateChangedEvent is emitted when a group's availability pair changes
type GroupStateChangedEvent struct {
	Name          string    `json:"name"`
	GroupStateIn  string    `json:"groupStateIn"`
	GroupStateOut string    `json:"groupStateOut"`
	ChangedAt     time.Time `json:"changedAt"`
}

func (e *GroupStateChangedEvent) EventType() string     { return "locationgroup.state.changed" }
func (e *GroupStateChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// GroupOperationModeChangedEvent is emitted when a group's operation mode changes
type GroupOperationModeChangedEvent struct {
	Name          string    `json:"name"`
	OperationMode string    `json:"operationMode"`
	ChangedAt     time.Time `json:"changedAt"`
}

func (e *GroupOperationModeChangedEvent) EventType() string     { return "locationgroup.mode.changed" }
func (e *GroupOperationModeChangedEvent) OccurredAt() time.Time { return e.ChangedAt }
