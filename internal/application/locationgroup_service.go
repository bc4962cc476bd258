package application

import (
	"context"
	"fmt"

	"github.com/wms-core/location-service/internal/domain"
	"github.com/wms-core/location-service/pkg/errors"
	"github.com/wms-core/location-service/pkg/logging"
)

// LocationGroupRepository interface for location group persistence.
// SaveAll persists every group in one transaction; a version conflict on
// any of them fails the whole batch.
type LocationGroupRepository interface {
	Save(ctx context.Context, group *domain.LocationGroup) error
	SaveAll(ctx context.Context, groups []*domain.LocationGroup) error
	FindByName(ctx context.Context, name string) (*domain.LocationGroup, error)
	FindAll(ctx context.Context, limit, offset int) ([]*domain.LocationGroup, error)
}

// LocationGroupApplicationService handles location group use cases
type LocationGroupApplicationService struct {
	repo       LocationGroupRepository
	propagator *GroupPropagator
	logger     *logging.Logger
}

// NewLocationGroupApplicationService creates a new LocationGroupApplicationService
func NewLocationGroupApplicationService(
	repo LocationGroupRepository,
	propagator *GroupPropagator,
	logger *logging.Logger,
) *LocationGroupApplicationService {
	return &LocationGroupApplicationService{
		repo:       repo,
		propagator: propagator,
		logger:     logger,
	}
}

// CreateLocationGroup creates a new location group, attaching it to its
// parent when one is named. Parent update and group creation commit together.
func (s *LocationGroupApplicationService) CreateLocationGroup(ctx context.Context, cmd CreateLocationGroupCommand) (*LocationGroupDTO, error) {
	existing, err := s.repo.FindByName(ctx, cmd.Name)
	if err != nil {
		s.logger.WithError(err).Error("Failed to check location group", "name", cmd.Name)
		return nil, fmt.Errorf("failed to check location group: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict("location group already exists").WithDetail("name", cmd.Name)
	}

	group, err := domain.NewLocationGroup(cmd.Name, cmd.ParentName)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	group.GroupType = cmd.GroupType

	if cmd.ParentName != "" {
		parent, err := s.repo.FindByName(ctx, cmd.ParentName)
		if err != nil {
			s.logger.WithError(err).Error("Failed to load parent group", "name", cmd.ParentName)
			return nil, fmt.Errorf("failed to load parent group: %w", err)
		}
		if parent == nil {
			return nil, errors.ErrNotFoundWithID("location group", cmd.ParentName)
		}
		if err := parent.AddChild(cmd.Name); err != nil {
			return nil, errors.ErrConflict(err.Error())
		}

		if err := s.repo.SaveAll(ctx, []*domain.LocationGroup{parent, group}); err != nil {
			s.logger.WithError(err).Error("Failed to save location group", "name", cmd.Name)
			return nil, fmt.Errorf("failed to save location group: %w", err)
		}
	} else {
		if err := s.repo.Save(ctx, group); err != nil {
			s.logger.WithError(err).Error("Failed to save location group", "name", cmd.Name)
			return nil, fmt.Errorf("failed to save location group: %w", err)
		}
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "locationgroup.created",
		EntityType: "locationGroup",
		EntityID:   cmd.Name,
		Action:     "created",
		RelatedIDs: map[string]string{
			"parentName": cmd.ParentName,
		},
	})

	return ToLocationGroupDTO(group), nil
}

// GetLocationGroup retrieves a location group by name
func (s *LocationGroupApplicationService) GetLocationGroup(ctx context.Context, query GetLocationGroupQuery) (*LocationGroupDTO, error) {
	group, err := s.repo.FindByName(ctx, query.Name)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get location group", "name", query.Name)
		return nil, fmt.Errorf("failed to get location group: %w", err)
	}
	if group == nil {
		return nil, errors.ErrNotFoundWithID("location group", query.Name)
	}

	return ToLocationGroupDTO(group), nil
}

// ListLocationGroups retrieves all location groups
func (s *LocationGroupApplicationService) ListLocationGroups(ctx context.Context, query ListLocationGroupsQuery) ([]LocationGroupDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	groups, err := s.repo.FindAll(ctx, limit, query.Offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list location groups")
		return nil, fmt.Errorf("failed to list location groups: %w", err)
	}

	return ToLocationGroupDTOs(groups), nil
}

// ChangeGroupState sets a group's availability pair and cascades it to the
// whole subtree
func (s *LocationGroupApplicationService) ChangeGroupState(ctx context.Context, cmd ChangeGroupStateCommand) (*LocationGroupDTO, error) {
	stateIn := domain.LocationGroupState(cmd.GroupStateIn)
	stateOut := domain.LocationGroupState(cmd.GroupStateOut)
	if !stateIn.IsValid() {
		return nil, errors.ErrValidation("invalid group state").WithDetail("groupStateIn", cmd.GroupStateIn)
	}
	if !stateOut.IsValid() {
		return nil, errors.ErrValidation("invalid group state").WithDetail("groupStateOut", cmd.GroupStateOut)
	}

	group, err := s.findGroup(ctx, cmd.Name)
	if err != nil {
		return nil, err
	}

	if err := group.ChangeGroupState(stateIn, stateOut); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	apply := func(descendant *domain.LocationGroup) error {
		return descendant.ApplyCascadedState(stateIn, stateOut)
	}
	if _, err := s.propagator.Cascade(ctx, group, apply); err != nil {
		s.logger.WithError(err).Error("Failed to cascade group state", "name", cmd.Name)
		return nil, err
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "locationgroup.state.changed",
		EntityType: "locationGroup",
		EntityID:   cmd.Name,
		Action:     "state_changed",
		RelatedIDs: map[string]string{
			"groupStateIn":  cmd.GroupStateIn,
			"groupStateOut": cmd.GroupStateOut,
		},
	})

	return ToLocationGroupDTO(group), nil
}

// ChangeGroupMode sets a group's operation mode and cascades it to the
// whole subtree
func (s *LocationGroupApplicationService) ChangeGroupMode(ctx context.Context, cmd ChangeGroupModeCommand) (*LocationGroupDTO, error) {
	mode := domain.OperationMode(cmd.OperationMode)
	if !mode.IsValid() {
		return nil, errors.ErrValidation("invalid operation mode").WithDetail("operationMode", cmd.OperationMode)
	}

	group, err := s.findGroup(ctx, cmd.Name)
	if err != nil {
		return nil, err
	}

	if err := group.ChangeOperationMode(mode); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	apply := func(descendant *domain.LocationGroup) error {
		return descendant.ApplyCascadedOperationMode(mode)
	}
	if _, err := s.propagator.Cascade(ctx, group, apply); err != nil {
		s.logger.WithError(err).Error("Failed to cascade operation mode", "name", cmd.Name)
		return nil, err
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "locationgroup.mode.changed",
		EntityType: "locationGroup",
		EntityID:   cmd.Name,
		Action:     "mode_changed",
		RelatedIDs: map[string]string{
			"operationMode": cmd.OperationMode,
		},
	})

	return ToLocationGroupDTO(group), nil
}

func (s *LocationGroupApplicationService) findGroup(ctx context.Context, name string) (*domain.LocationGroup, error) {
	group, err := s.repo.FindByName(ctx, name)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load location group", "name", name)
		return nil, fmt.Errorf("failed to load location group: %w", err)
	}
	if group == nil {
		return nil, errors.ErrNotFoundWithID("location group", name)
	}
	return group, nil
}
