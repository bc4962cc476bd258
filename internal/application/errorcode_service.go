package application

import (
	"context"
	"fmt"

	"github.com/wms-core/location-service/internal/domain"
	"github.com/wms-core/location-service/pkg/errors"
	"github.com/wms-core/location-service/pkg/logging"
	"github.com/wms-core/location-service/pkg/metrics"
)

// ErrorCodeService decodes equipment error codes into group availability
// through the configured decoder chains and applies the result with cascade.
type ErrorCodeService struct {
	infeedChain  *domain.DecoderChain
	outfeedChain *domain.DecoderChain
	groups       LocationGroupRepository
	propagator   *GroupPropagator
	logger       *logging.Logger
	metrics      *metrics.Metrics
}

// NewErrorCodeService creates an ErrorCodeService with the baseline infeed
// and outfeed decoders
func NewErrorCodeService(
	groups LocationGroupRepository,
	propagator *GroupPropagator,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ErrorCodeService {
	return &ErrorCodeService{
		infeedChain:  domain.NewDecoderChain(domain.InfeedStateDecoder{}),
		outfeedChain: domain.NewDecoderChain(domain.OutfeedStateDecoder{}),
		groups:       groups,
		propagator:   propagator,
		logger:       logger,
		metrics:      m,
	}
}

// NewErrorCodeServiceWithDecoders creates an ErrorCodeService with explicit
// decoder chains, for deployments that plug in site-specific decoders
func NewErrorCodeServiceWithDecoders(
	infeedChain, outfeedChain *domain.DecoderChain,
	groups LocationGroupRepository,
	propagator *GroupPropagator,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ErrorCodeService {
	return &ErrorCodeService{
		infeedChain:  infeedChain,
		outfeedChain: outfeedChain,
		groups:       groups,
		propagator:   propagator,
		logger:       logger,
		metrics:      m,
	}
}

// DecodeGroupStateIn decodes the infeed availability from an error code
func (s *ErrorCodeService) DecodeGroupStateIn(code string) (domain.LocationGroupState, bool, error) {
	return s.infeedChain.Decode(code)
}

// DecodeGroupStateOut decodes the outfeed availability from an error code
func (s *ErrorCodeService) DecodeGroupStateOut(code string) (domain.LocationGroupState, bool, error) {
	return s.outfeedChain.Decode(code)
}

// ReportEquipmentStatus decodes the reported error code and applies the
// decoded availability to the named group, cascading to its subtree. A code
// no decoder can classify leaves the group untouched; only flags the chains
// decoded are changed, the other keeps its prior value.
func (s *ErrorCodeService) ReportEquipmentStatus(ctx context.Context, cmd ReportEquipmentStatusCommand) error {
	if cmd.LocationGroupName == "" {
		return errors.ErrValidation("location group name is required")
	}

	ctx = logging.ContextWithTargetKey(ctx, cmd.LocationGroupName)

	stateIn, inDecoded, err := s.infeedChain.Decode(cmd.ErrorCode)
	if err != nil {
		s.metrics.RecordErrorCodeDecoded("invalid")
		return errors.ErrValidation(err.Error())
	}
	stateOut, outDecoded, err := s.outfeedChain.Decode(cmd.ErrorCode)
	if err != nil {
		s.metrics.RecordErrorCodeDecoded("invalid")
		return errors.ErrValidation(err.Error())
	}

	if !inDecoded && !outDecoded {
		s.metrics.RecordErrorCodeDecoded("unclassifiable")
		s.logger.WithContext(ctx).Warn("Unclassifiable error code, group state unchanged",
			"errorCode", cmd.ErrorCode, "locationGroup", cmd.LocationGroupName)
		return nil
	}
	s.metrics.RecordErrorCodeDecoded("decoded")

	group, err := s.groups.FindByName(ctx, cmd.LocationGroupName)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load location group", "name", cmd.LocationGroupName)
		return fmt.Errorf("failed to load location group: %w", err)
	}
	if group == nil {
		return errors.ErrNotFoundWithID("location group", cmd.LocationGroupName)
	}

	if !inDecoded {
		stateIn = group.GroupStateIn
	}
	if !outDecoded {
		stateOut = group.GroupStateOut
	}

	if err := group.ChangeGroupState(stateIn, stateOut); err != nil {
		return errors.ErrValidation(err.Error())
	}

	apply := func(descendant *domain.LocationGroup) error {
		return descendant.ApplyCascadedState(stateIn, stateOut)
	}
	if _, err := s.propagator.Cascade(ctx, group, apply); err != nil {
		s.logger.WithError(err).Error("Failed to cascade decoded state", "name", cmd.LocationGroupName)
		return err
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "locationgroup.state.changed",
		EntityType: "locationGroup",
		EntityID:   cmd.LocationGroupName,
		Action:     "equipment_status_applied",
		RelatedIDs: map[string]string{
			"errorCode":     cmd.ErrorCode,
			"groupStateIn":  string(stateIn),
			"groupStateOut": string(stateOut),
		},
	})

	return nil
}
