package application

import "time"

// LocationDTO represents a location data transfer object
type LocationDTO struct {
	LocationID     string    `json:"locationId"`
	GroupName      string    `json:"groupName,omitempty"`
	ErrorCode      string    `json:"errorCode"`
	PLCState       int       `json:"plcState"`
	Stockzone      string    `json:"stockzone,omitempty"`
	InfeedBlocked  bool      `json:"infeedBlocked"`
	OutfeedBlocked bool      `json:"outfeedBlocked"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// LocationGroupDTO represents a location group data transfer object
type LocationGroupDTO struct {
	Name          string    `json:"name"`
	ParentName    string    `json:"parentName,omitempty"`
	ChildNames    []string  `json:"childNames"`
	GroupStateIn  string    `json:"groupStateIn"`
	GroupStateOut string    `json:"groupStateOut"`
	OperationMode string    `json:"operationMode"`
	GroupType     string    `json:"groupType,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TargetStateDTO is the state of a lock target after a transition. Exactly
// one of the location or group fields is populated, according to the kind.
type TargetStateDTO struct {
	TargetBK      string `json:"targetBK"`
	TargetKind    string `json:"targetKind"`
	ErrorCode     string `json:"errorCode,omitempty"`
	GroupStateIn  string `json:"groupStateIn,omitempty"`
	GroupStateOut string `json:"groupStateOut,omitempty"`
	OperationMode string `json:"operationMode,omitempty"`
}

// Target kinds reported in TargetStateDTO
const (
	TargetKindLocation      = "LOCATION"
	TargetKindLocationGroup = "LOCATION_GROUP"
)
