package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wms-core/location-service/internal/application"
	"github.com/wms-core/location-service/pkg/cloudevents"
	"github.com/wms-core/location-service/pkg/errors"
	"github.com/wms-core/location-service/pkg/kafka"
	"github.com/wms-core/location-service/pkg/logging"
)

// EventSubscriber is the part of the Kafka consumer the equipment status
// listener needs
type EventSubscriber interface {
	Subscribe(topic string, eventType string, handler kafka.EventHandler)
}

// EquipmentStatusConsumer routes inbound equipment status events to the
// error code decoding pipeline
type EquipmentStatusConsumer struct {
	errorCodes *application.ErrorCodeService
	logger     *logging.Logger
}

// NewEquipmentStatusConsumer creates a new EquipmentStatusConsumer
func NewEquipmentStatusConsumer(errorCodes *application.ErrorCodeService, logger *logging.Logger) *EquipmentStatusConsumer {
	return &EquipmentStatusConsumer{
		errorCodes: errorCodes,
		logger:     logger,
	}
}

// Register subscribes the consumer to the equipment status topic
func (c *EquipmentStatusConsumer) Register(subscriber EventSubscriber) {
	subscriber.Subscribe(kafka.Topics.EquipmentStatusInbound, cloudevents.EquipmentStatusReported, c.HandleEquipmentStatus)
}

// HandleEquipmentStatus applies a reported equipment error code to the
// addressed location group. Reports for unknown groups and malformed codes
// are logged and dropped; redelivering them cannot make them applicable.
func (c *EquipmentStatusConsumer) HandleEquipmentStatus(ctx context.Context, event *cloudevents.CloudEvent) error {
	data, err := decodeEventData(event)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Error("Failed to decode equipment status event",
			"eventId", event.ID,
		)
		return nil
	}

	cmd := application.ReportEquipmentStatusCommand{
		LocationGroupName: data.LocationGroupName,
		ErrorCode:         data.ErrorCode,
	}

	if err := c.errorCodes.ReportEquipmentStatus(ctx, cmd); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			switch appErr.Code {
			case errors.CodeNotFound, errors.CodeValidationError:
				c.logger.WithContext(ctx).WithError(err).Warn("Dropping equipment status report",
					"locationGroup", data.LocationGroupName,
					"errorCode", data.ErrorCode,
				)
				return nil
			}
		}
		return err
	}

	return nil
}

func decodeEventData(event *cloudevents.CloudEvent) (*cloudevents.EquipmentStatusData, error) {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	var data cloudevents.EquipmentStatusData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal equipment status data: %w", err)
	}

	if data.LocationGroupName == "" {
		return nil, fmt.Errorf("equipment status event %s has no location group name", event.ID)
	}

	return &data, nil
}
