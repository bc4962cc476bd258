package mongodb

import (
	"github.com/wms-core/location-service/internal/domain"
	"github.com/wms-core/location-service/pkg/cloudevents"
)

const (
	locationEventsTopic = "wms.location.events"

	// EventSource identifies this service in outbound CloudEvents
	EventSource = "location-service"
)

// domainEventToCloudEvent converts a collected domain event into its wire
// representation for the outbox
func domainEventToCloudEvent(factory *cloudevents.Factory, subject string, event domain.DomainEvent) cloudevents.CloudEvent {
	switch e := event.(type) {
	case *domain.TargetLockChangedEvent:
		return factory.Create(cloudevents.TargetLockChanged, subject, cloudevents.TargetLockChangedData{
			TargetBK:      e.TargetBK,
			LockType:      e.LockType,
			OperationMode: e.OperationMode,
			ReAllocation:  e.ReAllocation,
			ChangedAt:     e.ChangedAt,
		}).WithTargetKey(e.TargetBK)
	case *domain.GroupStateChangedEvent:
		return factory.Create(cloudevents.GroupStateChanged, subject, cloudevents.GroupStateChangedData{
			Name:          e.Name,
			GroupStateIn:  e.GroupStateIn,
			GroupStateOut: e.GroupStateOut,
			ChangedAt:     e.ChangedAt,
		})
	case *domain.GroupOperationModeChangedEvent:
		return factory.Create(cloudevents.GroupOperationModeChanged, subject, cloudevents.GroupOperationModeChangedData{
			Name:          e.Name,
			OperationMode: e.OperationMode,
			ChangedAt:     e.ChangedAt,
		})
	case *domain.LocationGroupCreatedEvent:
		return factory.Create(cloudevents.GroupCreated, subject, cloudevents.GroupCreatedData{
			Name:       e.Name,
			ParentName: e.ParentName,
			CreatedAt:  e.CreatedAt,
		})
	case *domain.LocationCreatedEvent:
		return factory.Create(cloudevents.LocationCreated, subject, cloudevents.LocationCreatedData{
			LocationID: e.LocationID,
			GroupName:  e.GroupName,
			CreatedAt:  e.CreatedAt,
		})
	case *domain.LocationStateChangedEvent:
		return factory.Create(cloudevents.LocationStateChanged, subject, cloudevents.LocationStateChangedData{
			LocationID: e.LocationID,
			ErrorCode:  e.ErrorCode,
			ChangedAt:  e.ChangedAt,
		})
	default:
		return factory.Create("wms.location."+event.EventType(), subject, event)
	}
}
