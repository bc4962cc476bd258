package application

import (
	"context"
	"fmt"

	"github.com/wms-core/location-service/internal/domain"
	"github.com/wms-core/location-service/pkg/errors"
	"github.com/wms-core/location-service/pkg/logging"
)

// LocationRepository interface for location persistence
type LocationRepository interface {
	Save(ctx context.Context, location *domain.Location) error
	FindByLocationID(ctx context.Context, locationID domain.LocationPK) (*domain.Location, error)
	FindByGroupName(ctx context.Context, groupName string) ([]*domain.Location, error)
	FindAll(ctx context.Context, limit, offset int) ([]*domain.Location, error)
}

// LocationApplicationService handles location-related use cases
type LocationApplicationService struct {
	repo   LocationRepository
	groups LocationGroupRepository
	logger *logging.Logger
}

// NewLocationApplicationService creates a new LocationApplicationService
func NewLocationApplicationService(
	repo LocationRepository,
	groups LocationGroupRepository,
	logger *logging.Logger,
) *LocationApplicationService {
	return &LocationApplicationService{
		repo:   repo,
		groups: groups,
		logger: logger,
	}
}

// CreateLocation creates a new location
func (s *LocationApplicationService) CreateLocation(ctx context.Context, cmd CreateLocationCommand) (*LocationDTO, error) {
	locationID, err := domain.ParseLocationPK(cmd.LocationID)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	existing, err := s.repo.FindByLocationID(ctx, locationID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to check location", "locationId", cmd.LocationID)
		return nil, fmt.Errorf("failed to check location: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict("location already exists").WithDetail("locationId", cmd.LocationID)
	}

	if cmd.GroupName != "" {
		group, err := s.groups.FindByName(ctx, cmd.GroupName)
		if err != nil {
			s.logger.WithError(err).Error("Failed to load location group", "name", cmd.GroupName)
			return nil, fmt.Errorf("failed to load location group: %w", err)
		}
		if group == nil {
			return nil, errors.ErrNotFoundWithID("location group", cmd.GroupName)
		}
	}

	location, err := domain.NewLocation(locationID, cmd.GroupName)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	location.Stockzone = cmd.Stockzone

	if err := s.repo.Save(ctx, location); err != nil {
		s.logger.WithError(err).Error("Failed to save location", "locationId", cmd.LocationID)
		return nil, fmt.Errorf("failed to save location: %w", err)
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "location.created",
		EntityType: "location",
		EntityID:   location.TargetKey(),
		Action:     "created",
		RelatedIDs: map[string]string{
			"groupName": cmd.GroupName,
		},
	})

	return ToLocationDTO(location), nil
}

// GetLocation retrieves a location by its composite key
func (s *LocationApplicationService) GetLocation(ctx context.Context, query GetLocationQuery) (*LocationDTO, error) {
	locationID, err := domain.ParseLocationPK(query.LocationID)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	location, err := s.repo.FindByLocationID(ctx, locationID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get location", "locationId", query.LocationID)
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	if location == nil {
		return nil, errors.ErrNotFoundWithID("location", query.LocationID)
	}

	return ToLocationDTO(location), nil
}

// ListLocations retrieves locations, optionally scoped to a group
func (s *LocationApplicationService) ListLocations(ctx context.Context, query ListLocationsQuery) ([]LocationDTO, error) {
	if query.GroupName != "" {
		locations, err := s.repo.FindByGroupName(ctx, query.GroupName)
		if err != nil {
			s.logger.WithError(err).Error("Failed to list locations by group", "groupName", query.GroupName)
			return nil, fmt.Errorf("failed to list locations: %w", err)
		}
		return ToLocationDTOs(locations), nil
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	locations, err := s.repo.FindAll(ctx, limit, query.Offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list locations")
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	return ToLocationDTOs(locations), nil
}
