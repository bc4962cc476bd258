package cloudevents

import (
	"time"

	"github.com/google/uuid"
)

const (
	SpecVersion     = "1.0"
	DataContentType = "application/json"
)

// Factory creates CloudEvents with a consistent source
type Factory struct {
	source string
}

// NewFactory creates a new CloudEvent factory for the given source service
func NewFactory(source string) *Factory {
	return &Factory{source: source}
}

// Create builds a new CloudEvent of the given type
func (f *Factory) Create(eventType, subject string, data interface{}) CloudEvent {
	return CloudEvent{
		SpecVersion:     SpecVersion,
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: DataContentType,
		Data:            data,
	}
}

// WithCorrelationID sets the correlation extension
func (e CloudEvent) WithCorrelationID(correlationID string) CloudEvent {
	e.CorrelationID = correlationID
	return e
}

// WithWarehouseID sets the warehouse extension
func (e CloudEvent) WithWarehouseID(warehouseID string) CloudEvent {
	e.WarehouseID = warehouseID
	return e
}

// WithTargetKey sets the target business key extension
func (e CloudEvent) WithTargetKey(targetKey string) CloudEvent {
	e.TargetKey = targetKey
	return e
}
