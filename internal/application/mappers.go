package application

import "github.com/wms-core/location-service/internal/domain"

// ToLocationDTO converts a domain Location to LocationDTO
func ToLocationDTO(location *domain.Location) *LocationDTO {
	if location == nil {
		return nil
	}

	return &LocationDTO{
		LocationID:     location.LocationID.String(),
		GroupName:      location.GroupName,
		ErrorCode:      location.ErrorCode.String(),
		PLCState:       location.PLCState,
		Stockzone:      location.Stockzone,
		InfeedBlocked:  location.InfeedBlocked(),
		OutfeedBlocked: location.OutfeedBlocked(),
		CreatedAt:      location.CreatedAt,
		UpdatedAt:      location.UpdatedAt,
	}
}

// ToLocationDTOs converts a slice of domain Locations to LocationDTOs
func ToLocationDTOs(locations []*domain.Location) []LocationDTO {
	dtos := make([]LocationDTO, 0, len(locations))
	for _, location := range locations {
		if dto := ToLocationDTO(location); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToLocationGroupDTO converts a domain LocationGroup to LocationGroupDTO
func ToLocationGroupDTO(group *domain.LocationGroup) *LocationGroupDTO {
	if group == nil {
		return nil
	}

	childNames := make([]string, len(group.ChildNames))
	copy(childNames, group.ChildNames)

	return &LocationGroupDTO{
		Name:          group.Name,
		ParentName:    group.ParentName,
		ChildNames:    childNames,
		GroupStateIn:  string(group.GroupStateIn),
		GroupStateOut: string(group.GroupStateOut),
		OperationMode: string(group.OperationMode),
		GroupType:     group.GroupType,
		CreatedAt:     group.CreatedAt,
		UpdatedAt:     group.UpdatedAt,
	}
}

// ToLocationGroupDTOs converts a slice of domain LocationGroups to LocationGroupDTOs
func ToLocationGroupDTOs(groups []*domain.LocationGroup) []LocationGroupDTO {
	dtos := make([]LocationGroupDTO, 0, len(groups))
	for _, group := range groups {
		if dto := ToLocationGroupDTO(group); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToTargetStateDTO converts a lock target to its post-transition state view
func ToTargetStateDTO(target domain.Target) *TargetStateDTO {
	switch t := target.(type) {
	case *domain.Location:
		return &TargetStateDTO{
			TargetBK:   t.TargetKey(),
			TargetKind: TargetKindLocation,
			ErrorCode:  t.ErrorCode.String(),
		}
	case *domain.LocationGroup:
		return &TargetStateDTO{
			TargetBK:      t.TargetKey(),
			TargetKind:    TargetKindLocationGroup,
			GroupStateIn:  string(t.GroupStateIn),
			GroupStateOut: string(t.GroupStateOut),
			OperationMode: string(t.OperationMode),
		}
	default:
		return nil
	}
}
