package application

// Target Commands

// ChangeTargetStateCommand applies a granular lock transition to a target
type ChangeTargetStateCommand struct {
	TargetBK string `json:"targetBK"`
	LockType string `json:"lockType"`
	LockMode string `json:"lockMode"`
}

// LockTargetCommand places a permanent lock on a target
type LockTargetCommand struct {
	TargetBK     string `json:"targetBK"`
	ReAllocation *bool  `json:"reAllocation,omitempty"`
}

// ReleaseTargetCommand releases a permanent lock from a target
type ReleaseTargetCommand struct {
	TargetBK string `json:"targetBK"`
}

// Location Commands

// CreateLocationCommand creates a new location
type CreateLocationCommand struct {
	LocationID string `json:"locationId"`
	GroupName  string `json:"groupName"`
	Stockzone  string `json:"stockzone"`
}

// LocationGroup Commands

// CreateLocationGroupCommand creates a new location group
type CreateLocationGroupCommand struct {
	Name       string `json:"name"`
	ParentName string `json:"parentName"`
	GroupType  string `json:"groupType"`
}

// ChangeGroupStateCommand sets a group's availability pair, cascading
type ChangeGroupStateCommand struct {
	Name          string `json:"name"`
	GroupStateIn  string `json:"groupStateIn"`
	GroupStateOut string `json:"groupStateOut"`
}

// ChangeGroupModeCommand sets a group's operation mode, cascading
type ChangeGroupModeCommand struct {
	Name          string `json:"name"`
	OperationMode string `json:"operationMode"`
}

// ReportEquipmentStatusCommand applies an equipment error code to a group
type ReportEquipmentStatusCommand struct {
	LocationGroupName string `json:"locationGroupName"`
	ErrorCode         string `json:"errorCode"`
}

// Queries

// GetLocationQuery retrieves a location by its composite key
type GetLocationQuery struct {
	LocationID string `json:"locationId"`
}

// ListLocationsQuery lists locations, optionally scoped to a group
type ListLocationsQuery struct {
	GroupName string `json:"groupName"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}

// GetLocationGroupQuery retrieves a location group by name
type GetLocationGroupQuery struct {
	Name string `json:"name"`
}

// ListLocationGroupsQuery lists all location groups
type ListLocationGroupsQuery struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
