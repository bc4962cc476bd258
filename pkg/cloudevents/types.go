package cloudevents

import (
	"time"
)

// EventType constants for location-service domain events
const (
	// Target availability events
	TargetLockChanged = "wms.location.target-lock-changed"

	// LocationGroup events
	GroupStateChanged         = "wms.location.group-state-changed"
	GroupOperationModeChanged = "wms.location.group-operation-mode-changed"
	GroupCreated              = "wms.location.group-created"

	// Location events
	LocationStateChanged = "wms.location.location-state-changed"
	LocationCreated      = "wms.location.location-created"

	// Inbound equipment events
	EquipmentStatusReported = "wms.equipment.status-reported"
)

// CloudEvent represents a CloudEvents v1.0 compliant event
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Extensions
	CorrelationID string `json:"wmscorrelationid,omitempty"`
	WarehouseID   string `json:"wmswarehouseid,omitempty"`
	TargetKey     string `json:"wmstargetkey,omitempty"`
}

// TargetLockChangedData is the payload for TargetLockChanged events
type TargetLockChangedData struct {
	TargetBK      string    `json:"targetBK"`
	LockType      string    `json:"lockType"`
	OperationMode string    `json:"operationMode"`
	ReAllocation  *bool     `json:"reAllocation,omitempty"`
	ChangedAt     time.Time `json:"changedAt"`
}

// GroupStateChangedData is the payload for GroupStateChanged events
type GroupStateChangedData struct {
	Name          string    `json:"name"`
	GroupStateIn  string    `json:"groupStateIn"`
	GroupStateOut string    `json:"groupStateOut"`
	ChangedAt     time.Time `json:"changedAt"`
}

// GroupOperationModeChangedData is the payload for GroupOperationModeChanged events
type GroupOperationModeChangedData struct {
	Name          string    `json:"name"`
	OperationMode string    `json:"operationMode"`
	ChangedAt     time.Time `json:"changedAt"`
}

// LocationStateChangedData is the payload for LocationStateChanged events
type LocationStateChangedData struct {
	LocationID string    `json:"locationId"`
	ErrorCode  string    `json:"errorCode"`
	ChangedAt  time.Time `json:"changedAt"`
}

// GroupCreatedData is the payload for GroupCreated events
type GroupCreatedData struct {
	Name       string    `json:"name"`
	ParentName string    `json:"parentName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LocationCreatedData is the payload for LocationCreated events
type LocationCreatedData struct {
	LocationID string    `json:"locationId"`
	GroupName  string    `json:"groupName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// EquipmentStatusData is the payload reported by field equipment
type EquipmentStatusData struct {
	LocationGroupName string    `json:"locationGroupName"`
	ErrorCode         string    `json:"errorCode"`
	ReportedAt        time.Time `json:"reportedAt"`
}
