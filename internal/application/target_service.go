package application

import (
	"context"
	"fmt"

	"github.com/wms-core/location-service/internal/domain"
	"github.com/wms-core/location-service/pkg/errors"
	"github.com/wms-core/location-service/pkg/logging"
	"github.com/wms-core/location-service/pkg/metrics"
)

// Target kinds used in metrics labels
const (
	targetKindLocationLabel = "location"
	targetKindGroupLabel    = "location_group"
)

// TargetService drives lock state transitions against Locations and
// LocationGroups addressed by business key. A key that parses as a
// 5-part location key addresses a Location; any other key addresses a
// LocationGroup by name.
type TargetService struct {
	locations  LocationRepository
	groups     LocationGroupRepository
	propagator *GroupPropagator
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// NewTargetService creates a new TargetService
func NewTargetService(
	locations LocationRepository,
	groups LocationGroupRepository,
	propagator *GroupPropagator,
	logger *logging.Logger,
	m *metrics.Metrics,
) *TargetService {
	return &TargetService{
		locations:  locations,
		groups:     groups,
		propagator: propagator,
		logger:     logger,
		metrics:    m,
	}
}

// ChangeState applies a granular lock transition to the addressed target.
// PERMANENT_LOCK has no granular transitions; it is only reachable through
// Lock and Release.
func (s *TargetService) ChangeState(ctx context.Context, cmd ChangeTargetStateCommand) (*TargetStateDTO, error) {
	lockType := domain.LockType(cmd.LockType)
	if !lockType.IsValid() {
		return nil, errors.ErrUnsupportedOperation("lockType", cmd.LockType)
	}
	mode := domain.LockMode(cmd.LockMode)
	if !mode.IsValid() {
		return nil, errors.ErrUnsupportedOperation("lockMode", cmd.LockMode)
	}
	if lockType == domain.PermanentLock {
		return nil, errors.ErrUnsupportedOperation("lockType", cmd.LockType)
	}

	ctx = logging.ContextWithTargetKey(ctx, cmd.TargetBK)

	if domain.IsLocationKey(cmd.TargetBK) {
		return s.changeLocationState(ctx, cmd.TargetBK, lockType, mode)
	}
	return s.changeGroupLockState(ctx, cmd.TargetBK, lockType, mode)
}

// Lock places a permanent lock on the target: the strongest lock, closing
// allocation and all operations regardless of the prior granular state.
func (s *TargetService) Lock(ctx context.Context, cmd LockTargetCommand) (*TargetStateDTO, error) {
	ctx = logging.ContextWithTargetKey(ctx, cmd.TargetBK)

	if domain.IsLocationKey(cmd.TargetBK) {
		location, err := s.findLocation(ctx, cmd.TargetBK)
		if err != nil {
			return nil, err
		}

		if err := location.ApplyPermanentLock(cmd.ReAllocation); err != nil {
			return nil, errors.ErrValidation(err.Error())
		}

		if err := s.saveLocation(ctx, location, domain.PermanentLock, "lock"); err != nil {
			return nil, err
		}
		return ToTargetStateDTO(location), nil
	}

	group, err := s.findGroup(ctx, cmd.TargetBK)
	if err != nil {
		return nil, err
	}

	if err := group.ApplyPermanentLock(cmd.ReAllocation); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.cascadeGroup(ctx, group, domain.PermanentLock, "lock"); err != nil {
		return nil, err
	}
	return ToTargetStateDTO(group), nil
}

// Release removes a permanent lock from the target, restoring full
// availability and both operations.
func (s *TargetService) Release(ctx context.Context, cmd ReleaseTargetCommand) (*TargetStateDTO, error) {
	ctx = logging.ContextWithTargetKey(ctx, cmd.TargetBK)

	if domain.IsLocationKey(cmd.TargetBK) {
		location, err := s.findLocation(ctx, cmd.TargetBK)
		if err != nil {
			return nil, err
		}

		if err := location.ReleasePermanentLock(); err != nil {
			return nil, errors.ErrValidation(err.Error())
		}

		if err := s.saveLocation(ctx, location, domain.PermanentLock, "unlock"); err != nil {
			return nil, err
		}
		return ToTargetStateDTO(location), nil
	}

	group, err := s.findGroup(ctx, cmd.TargetBK)
	if err != nil {
		return nil, err
	}

	if err := group.ReleasePermanentLock(); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.cascadeGroup(ctx, group, domain.PermanentLock, "unlock"); err != nil {
		return nil, err
	}
	return ToTargetStateDTO(group), nil
}

func (s *TargetService) changeLocationState(ctx context.Context, targetBK string, lockType domain.LockType, mode domain.LockMode) (*TargetStateDTO, error) {
	location, err := s.findLocation(ctx, targetBK)
	if err != nil {
		return nil, err
	}

	switch lockType {
	case domain.AllocationLock:
		err = location.ApplyAllocationLock(mode)
	case domain.OperationLock:
		err = location.ApplyOperationLock(mode)
	}
	if err != nil {
		s.metrics.RecordLockOperation(targetKindLocationLabel, string(lockType), string(mode), false)
		if err == domain.ErrOperationLockUnsupported {
			return nil, errors.ErrUnsupportedOperation("lockType", string(lockType)).Wrap(err)
		}
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.saveLocation(ctx, location, lockType, string(mode)); err != nil {
		return nil, err
	}
	return ToTargetStateDTO(location), nil
}

func (s *TargetService) changeGroupLockState(ctx context.Context, targetBK string, lockType domain.LockType, mode domain.LockMode) (*TargetStateDTO, error) {
	group, err := s.findGroup(ctx, targetBK)
	if err != nil {
		return nil, err
	}

	switch lockType {
	case domain.AllocationLock:
		err = group.ApplyAllocationLock(mode)
	case domain.OperationLock:
		err = group.ApplyOperationLock(mode)
	}
	if err != nil {
		s.metrics.RecordLockOperation(targetKindGroupLabel, string(lockType), string(mode), false)
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.cascadeGroup(ctx, group, lockType, string(mode)); err != nil {
		return nil, err
	}
	return ToTargetStateDTO(group), nil
}

func (s *TargetService) findLocation(ctx context.Context, targetBK string) (*domain.Location, error) {
	locationID, err := domain.ParseLocationPK(targetBK)
	if err != nil {
		return nil, errors.ErrNotFoundWithID("target", targetBK).Wrap(err)
	}

	location, err := s.locations.FindByLocationID(ctx, locationID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load location", "locationId", targetBK)
		return nil, fmt.Errorf("failed to load location: %w", err)
	}
	if location == nil {
		return nil, errors.ErrNotFoundWithID("target", targetBK)
	}
	return location, nil
}

func (s *TargetService) findGroup(ctx context.Context, targetBK string) (*domain.LocationGroup, error) {
	group, err := s.groups.FindByName(ctx, targetBK)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load location group", "name", targetBK)
		return nil, fmt.Errorf("failed to load location group: %w", err)
	}
	if group == nil {
		return nil, errors.ErrNotFoundWithID("target", targetBK)
	}
	return group, nil
}

func (s *TargetService) saveLocation(ctx context.Context, location *domain.Location, lockType domain.LockType, mode string) error {
	if err := s.locations.Save(ctx, location); err != nil {
		s.metrics.RecordLockOperation(targetKindLocationLabel, string(lockType), mode, false)
		s.logger.WithError(err).Error("Failed to save location", "locationId", location.TargetKey())
		return fmt.Errorf("failed to save location: %w", err)
	}

	s.metrics.RecordLockOperation(targetKindLocationLabel, string(lockType), mode, true)
	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "target.lock.changed",
		EntityType: "location",
		EntityID:   location.TargetKey(),
		Action:     "lock_changed",
		RelatedIDs: map[string]string{
			"lockType": string(lockType),
			"lockMode": mode,
		},
	})
	return nil
}

func (s *TargetService) cascadeGroup(ctx context.Context, group *domain.LocationGroup, lockType domain.LockType, mode string) error {
	nodes, err := s.propagator.Cascade(ctx, group, cascadeMutation(group, lockType))
	if err != nil {
		s.metrics.RecordLockOperation(targetKindGroupLabel, string(lockType), mode, false)
		s.logger.WithError(err).Error("Failed to cascade group lock", "name", group.Name)
		return err
	}

	s.metrics.RecordLockOperation(targetKindGroupLabel, string(lockType), mode, true)
	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "target.lock.changed",
		EntityType: "locationGroup",
		EntityID:   group.Name,
		Action:     "lock_changed",
		RelatedIDs: map[string]string{
			"lockType":     string(lockType),
			"lockMode":     mode,
			"nodesUpdated": fmt.Sprintf("%d", nodes),
		},
	})
	return nil
}

// cascadeMutation returns the descendant mutation for a lock transition that
// already happened on root. An allocation lock pushes the availability pair,
// an operation lock the mode, a permanent transition both.
func cascadeMutation(root *domain.LocationGroup, lockType domain.LockType) func(*domain.LocationGroup) error {
	switch lockType {
	case domain.AllocationLock:
		return func(descendant *domain.LocationGroup) error {
			return descendant.ApplyCascadedState(root.GroupStateIn, root.GroupStateOut)
		}
	case domain.OperationLock:
		return func(descendant *domain.LocationGroup) error {
			return descendant.ApplyCascadedOperationMode(root.OperationMode)
		}
	default:
		return func(descendant *domain.LocationGroup) error {
			if err := descendant.ApplyCascadedState(root.GroupStateIn, root.GroupStateOut); err != nil {
				return err
			}
			return descendant.ApplyCascadedOperationMode(root.OperationMode)
		}
	}
}
