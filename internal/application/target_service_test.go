package application

import (
	"context"
	"errors"
	"testing"

	"github.com/wms-core/location-service/internal/domain"
	appErrors "github.com/wms-core/location-service/pkg/errors"
	"github.com/wms-core/location-service/pkg/logging"
	"github.com/wms-core/location-service/pkg/metrics"
)

// MockLocationRepository is a mock implementation of LocationRepository for testing
type MockLocationRepository struct {
	locations map[string]*domain.Location
	saveErr   error
	findErr   error
}

func NewMockLocationRepository() *MockLocationRepository {
	return &MockLocationRepository{
		locations: make(map[string]*domain.Location),
	}
}

func (m *MockLocationRepository) Save(ctx context.Context, location *domain.Location) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.locations[location.TargetKey()] = location
	return nil
}

func (m *MockLocationRepository) FindByLocationID(ctx context.Context, locationID domain.LocationPK) (*domain.Location, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.locations[locationID.String()], nil
}

func (m *MockLocationRepository) FindByGroupName(ctx context.Context, groupName string) ([]*domain.Location, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var result []*domain.Location
	for _, location := range m.locations {
		if location.GroupName == groupName {
			result = append(result, location)
		}
	}
	return result, nil
}

func (m *MockLocationRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Location, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var result []*domain.Location
	for _, location := range m.locations {
		result = append(result, location)
	}
	if offset >= len(result) {
		return []*domain.Location{}, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (m *MockLocationRepository) SetSaveError(err error) {
	m.saveErr = err
}

func (m *MockLocationRepository) SetFindError(err error) {
	m.findErr = err
}

// AddLocation adds a location directly to the mock (for test setup)
func (m *MockLocationRepository) AddLocation(location *domain.Location) {
	m.locations[location.TargetKey()] = location
}

// MockLocationGroupRepository is a mock implementation of LocationGroupRepository for testing
type MockLocationGroupRepository struct {
	groups     map[string]*domain.LocationGroup
	saveErr    error
	saveAllErr error
	findErr    error
	savedBatch []*domain.LocationGroup
}

func NewMockLocationGroupRepository() *MockLocationGroupRepository {
	return &MockLocationGroupRepository{
		groups: make(map[string]*domain.LocationGroup),
	}
}

func (m *MockLocationGroupRepository) Save(ctx context.Context, group *domain.LocationGroup) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.groups[group.Name] = group
	return nil
}

func (m *MockLocationGroupRepository) SaveAll(ctx context.Context, groups []*domain.LocationGroup) error {
	if m.saveAllErr != nil {
		return m.saveAllErr
	}
	m.savedBatch = groups
	for _, group := range groups {
		m.groups[group.Name] = group
	}
	return nil
}

func (m *MockLocationGroupRepository) FindByName(ctx context.Context, name string) (*domain.LocationGroup, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.groups[name], nil
}

func (m *MockLocationGroupRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.LocationGroup, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var result []*domain.LocationGroup
	for _, group := range m.groups {
		result = append(result, group)
	}
	if offset >= len(result) {
		return []*domain.LocationGroup{}, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (m *MockLocationGroupRepository) SetSaveError(err error) {
	m.saveErr = err
}

func (m *MockLocationGroupRepository) SetSaveAllError(err error) {
	m.saveAllErr = err
}

func (m *MockLocationGroupRepository) SetFindError(err error) {
	m.findErr = err
}

// AddGroup adds a group directly to the mock (for test setup)
func (m *MockLocationGroupRepository) AddGroup(group *domain.LocationGroup) {
	m.groups[group.Name] = group
}

// createTestTargetService creates a TargetService backed by mock repositories
func createTestTargetService() (*TargetService, *MockLocationRepository, *MockLocationGroupRepository) {
	locations := NewMockLocationRepository()
	groups := NewMockLocationGroupRepository()
	logger := logging.New(logging.DefaultConfig("test"))
	m := metrics.New(metrics.DefaultConfig("test"))
	propagator := NewGroupPropagator(groups, logger, m)
	service := NewTargetService(locations, groups, propagator, logger, m)
	return service, locations, groups
}

func testLocation(t *testing.T, key string) *domain.Location {
	t.Helper()
	locationID, err := domain.ParseLocationPK(key)
	if err != nil {
		t.Fatalf("ParseLocationPK(%q) error = %v", key, err)
	}
	location, err := domain.NewLocation(locationID, "")
	if err != nil {
		t.Fatalf("NewLocation(%q) error = %v", key, err)
	}
	location.ClearDomainEvents()
	return location
}

func testGroup(t *testing.T, name, parent string, children ...string) *domain.LocationGroup {
	t.Helper()
	group, err := domain.NewLocationGroup(name, parent)
	if err != nil {
		t.Fatalf("NewLocationGroup(%q) error = %v", name, err)
	}
	for _, child := range children {
		if err := group.AddChild(child); err != nil {
			t.Fatalf("AddChild(%q) error = %v", child, err)
		}
	}
	group.ClearDomainEvents()
	return group
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr, ok := appErrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Errorf("error code = %s, want %s", appErr.Code, code)
	}
}

// =============================================================================
// ChangeState Tests
// =============================================================================

func TestTargetService_ChangeState_Location(t *testing.T) {
	ctx := context.Background()

	t.Run("allocation lock IN sets the infeed lock flag", func(t *testing.T) {
		service, locations, _ := createTestTargetService()
		locations.AddLocation(testLocation(t, "AISL/AISL/0001/0002/0000"))

		dto, err := service.ChangeState(ctx, ChangeTargetStateCommand{
			TargetBK: "AISL/AISL/0001/0002/0000",
			LockType: "ALLOCATION_LOCK",
			LockMode: "IN",
		})
		if err != nil {
			t.Fatalf("ChangeState() error = %v", err)
		}
		if dto.TargetKind != TargetKindLocation {
			t.Errorf("TargetKind = %v, want %v", dto.TargetKind, TargetKindLocation)
		}
		if dto.ErrorCode != string(domain.LockStateIn) {
			t.Errorf("ErrorCode = %v, want %v", dto.ErrorCode, string(domain.LockStateIn))
		}
	})

	t.Run("allocation lock transitions cover all modes", func(t *testing.T) {
		tests := []struct {
			mode string
			want domain.ErrorCode
		}{
			{"IN", domain.LockStateIn},
			{"OUT", domain.LockStateOut},
			{"IN_AND_OUT", domain.LockStateInAndOut},
			{"NONE", domain.UnlockStateInAndOut},
		}
		for _, tt := range tests {
			t.Run(tt.mode, func(t *testing.T) {
				service, locations, _ := createTestTargetService()
				locations.AddLocation(testLocation(t, "AREA/A001/0001/0001/0001"))

				dto, err := service.ChangeState(ctx, ChangeTargetStateCommand{
					TargetBK: "AREA/A001/0001/0001/0001",
					LockType: "ALLOCATION_LOCK",
					LockMode: tt.mode,
				})
				if err != nil {
					t.Fatalf("ChangeState() error = %v", err)
				}
				if dto.ErrorCode != string(tt.want) {
					t.Errorf("ErrorCode = %v, want %v", dto.ErrorCode, string(tt.want))
				}
			})
		}
	})

	t.Run("operation lock on a location is unsupported and leaves state untouched", func(t *testing.T) {
		service, locations, _ := createTestTargetService()
		location := testLocation(t, "AREA/A001/0001/0001/0001")
		locations.AddLocation(location)

		_, err := service.ChangeState(ctx, ChangeTargetStateCommand{
			TargetBK: "AREA/A001/0001/0001/0001",
			LockType: "OPERATION_LOCK",
			LockMode: "IN",
		})
		assertAppErrorCode(t, err, appErrors.CodeUnsupportedOperation)
		if location.ErrorCode != domain.ErrorCodeAllNotSet {
			t.Errorf("ErrorCode = %v, want untouched %v", location.ErrorCode, domain.ErrorCodeAllNotSet)
		}
	})

	t.Run("location-shaped key without a location is not found", func(t *testing.T) {
		service, _, _ := createTestTargetService()

		_, err := service.ChangeState(ctx, ChangeTargetStateCommand{
			TargetBK: "AREA/A001/0001/0001/0001",
			LockType: "ALLOCATION_LOCK",
			LockMode: "IN",
		})
		assertAppErrorCode(t, err, appErrors.CodeNotFound)
	})

	t.Run("save failure surfaces as error", func(t *testing.T) {
		service, locations, _ := createTestTargetService()
		locations.AddLocation(testLocation(t, "AREA/A001/0001/0001/0001"))
		locations.SetSaveError(errors.New("database error"))

		_, err := service.ChangeState(ctx, ChangeTargetStateCommand{
			TargetBK: "AREA/A001/0001/0001/0001",
			LockType: "ALLOCATION_LOCK",
			LockMode: "IN",
		})
		if err == nil {
			t.Fatal("ChangeState() should return error when save fails")
		}
	})
}

func TestTargetService_ChangeState_LocationGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("allocation lock transitions set the availability pair", func(t *testing.T) {
		tests := []struct {
			mode    string
			wantIn  domain.LocationGroupState
			wantOut domain.LocationGroupState
		}{
			{"IN", domain.GroupStateNotAvailable, domain.GroupStateAvailable},
			{"OUT", domain.GroupStateAvailable, domain.GroupStateNotAvailable},
			{"IN_AND_OUT", domain.GroupStateNotAvailable, domain.GroupStateNotAvailable},
			{"NONE", domain.GroupStateAvailable, domain.GroupStateAvailable},
		}
		for _, tt := range tests {
			t.Run(tt.mode, func(t *testing.T) {
				service, _, groups := createTestTargetService()
				groups.AddGroup(testGroup(t, "ZONE_A", ""))

				dto, err := service.ChangeState(ctx, ChangeTargetStateCommand{
					TargetBK: "ZONE_A",
					LockType: "ALLOCATION_LOCK",
					LockMode: tt.mode,
				})
				if err != nil {
					t.Fatalf("ChangeState() error = %v", err)
				}
				if dto.GroupStateIn != string(tt.wantIn) {
					t.Errorf("GroupStateIn = %v, want %v", dto.GroupStateIn, tt.wantIn)
				}
				if dto.GroupStateOut != string(tt.wantOut) {
					t.Errorf("GroupStateOut = %v, want %v", dto.GroupStateOut, tt.wantOut)
				}
			})
		}
	})

	t.Run("operation lock transitions set the operation mode", func(t *testing.T) {
		tests := []struct {
			mode string
			want domain.OperationMode
		}{
			{"IN", domain.OperationModeOutfeed},
			{"OUT", domain.OperationModeInfeed},
			{"IN_AND_OUT", domain.OperationModeNoOperation},
			{"NONE", domain.OperationModeInfeedAndOutfeed},
		}
		for _, tt := range tests {
			t.Run(tt.mode, func(t *testing.T) {
				service, _, groups := createTestTargetService()
				groups.AddGroup(testGroup(t, "ZONE_A", ""))

				dto, err := service.ChangeState(ctx, ChangeTargetStateCommand{
					TargetBK: "ZONE_A",
					LockType: "OPERATION_LOCK",
					LockMode: tt.mode,
				})
				if err != nil {
					t.Fatalf("ChangeState() error = %v", err)
				}
				if dto.OperationMode != string(tt.want) {
					t.Errorf("OperationMode = %v, want %v", dto.OperationMode, tt.want)
				}
			})
		}
	})

	t.Run("allocation lock cascades to the whole subtree", func(t *testing.T) {
		service, _, groups := createTestTargetService()
		groups.AddGroup(testGroup(t, "AREA", "", "AISLE_1", "AISLE_2"))
		aisle1 := testGroup(t, "AISLE_1", "AREA")
		aisle2 := testGroup(t, "AISLE_2", "AREA")
		groups.AddGroup(aisle1)
		groups.AddGroup(aisle2)

		_, err := service.ChangeState(ctx, ChangeTargetStateCommand{
			TargetBK: "AREA",
			LockType: "ALLOCATION_LOCK",
			LockMode: "IN_AND_OUT",
		})
		if err != nil {
			t.Fatalf("ChangeState() error = %v", err)
		}

		for _, descendant := range []*domain.LocationGroup{aisle1, aisle2} {
			if descendant.GroupStateIn != domain.GroupStateNotAvailable {
				t.Errorf("%s GroupStateIn = %v, want NOT_AVAILABLE", descendant.Name, descendant.GroupStateIn)
			}
			if descendant.GroupStateOut != domain.GroupStateNotAvailable {
				t.Errorf("%s GroupStateOut = %v, want NOT_AVAILABLE", descendant.Name, descendant.GroupStateOut)
			}
		}
		if len(groups.savedBatch) != 3 {
			t.Errorf("saved batch size = %d, want 3", len(groups.savedBatch))
		}
	})

	t.Run("exactly one lock-changed event per transition", func(t *testing.T) {
		service, _, groups := createTestTargetService()
		root := testGroup(t, "AREA", "", "AISLE_1")
		child := testGroup(t, "AISLE_1", "AREA")
		groups.AddGroup(root)
		groups.AddGroup(child)

		_, err := service.ChangeState(ctx, ChangeTargetStateCommand{
			TargetBK: "AREA",
			LockType: "ALLOCATION_LOCK",
			LockMode: "IN",
		})
		if err != nil {
			t.Fatalf("ChangeState() error = %v", err)
		}

		lockEvents := 0
		for _, group := range groups.savedBatch {
			for _, event := range group.GetDomainEvents() {
				if _, ok := event.(*domain.TargetLockChangedEvent); ok {
					lockEvents++
				}
			}
		}
		if lockEvents != 1 {
			t.Errorf("lock-changed events = %d, want 1", lockEvents)
		}
	})

	t.Run("version conflict aborts the cascade", func(t *testing.T) {
		service, _, groups := createTestTargetService()
		groups.AddGroup(testGroup(t, "AREA", "", "AISLE_1"))
		groups.AddGroup(testGroup(t, "AISLE_1", "AREA"))
		groups.SetSaveAllError(appErrors.ErrConcurrentModification("location group"))

		_, err := service.ChangeState(ctx, ChangeTargetStateCommand{
			TargetBK: "AREA",
			LockType: "ALLOCATION_LOCK",
			LockMode: "IN",
		})
		assertAppErrorCode(t, err, appErrors.CodeConcurrentModification)
	})

	t.Run("unknown group name is not found", func(t *testing.T) {
		service, _, _ := createTestTargetService()

		_, err := service.ChangeState(ctx, ChangeTargetStateCommand{
			TargetBK: "NOWHERE",
			LockType: "ALLOCATION_LOCK",
			LockMode: "IN",
		})
		assertAppErrorCode(t, err, appErrors.CodeNotFound)
	})
}

func TestTargetService_ChangeState_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		lockType string
		lockMode string
	}{
		{"unknown lock type", "FLUX_LOCK", "IN"},
		{"unknown lock mode", "ALLOCATION_LOCK", "SIDEWAYS"},
		{"permanent lock has no granular transitions", "PERMANENT_LOCK", "IN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, groups := createTestTargetService()
			groups.AddGroup(testGroup(t, "ZONE_A", ""))

			_, err := service.ChangeState(ctx, ChangeTargetStateCommand{
				TargetBK: "ZONE_A",
				LockType: tt.lockType,
				LockMode: tt.lockMode,
			})
			assertAppErrorCode(t, err, appErrors.CodeUnsupportedOperation)
		})
	}
}

// =============================================================================
// Lock / Release Tests
// =============================================================================

func TestTargetService_Lock(t *testing.T) {
	ctx := context.Background()

	t.Run("permanently locks a location", func(t *testing.T) {
		service, locations, _ := createTestTargetService()
		location := testLocation(t, "AREA/A001/0001/0001/0001")
		locations.AddLocation(location)

		dto, err := service.Lock(ctx, LockTargetCommand{TargetBK: "AREA/A001/0001/0001/0001"})
		if err != nil {
			t.Fatalf("Lock() error = %v", err)
		}
		if dto.ErrorCode != string(domain.LockStateInAndOut) {
			t.Errorf("ErrorCode = %v, want %v", dto.ErrorCode, string(domain.LockStateInAndOut))
		}
	})

	t.Run("forwards the re-allocation hint", func(t *testing.T) {
		service, locations, _ := createTestTargetService()
		location := testLocation(t, "AREA/A001/0001/0001/0001")
		locations.AddLocation(location)

		reAllocation := true
		_, err := service.Lock(ctx, LockTargetCommand{
			TargetBK:     "AREA/A001/0001/0001/0001",
			ReAllocation: &reAllocation,
		})
		if err != nil {
			t.Fatalf("Lock() error = %v", err)
		}

		var lockEvent *domain.TargetLockChangedEvent
		for _, event := range location.GetDomainEvents() {
			if e, ok := event.(*domain.TargetLockChangedEvent); ok {
				lockEvent = e
			}
		}
		if lockEvent == nil {
			t.Fatal("expected a lock-changed event")
		}
		if lockEvent.ReAllocation == nil || !*lockEvent.ReAllocation {
			t.Errorf("ReAllocation = %v, want true", lockEvent.ReAllocation)
		}
	})

	t.Run("permanently locks a group subtree", func(t *testing.T) {
		service, _, groups := createTestTargetService()
		root := testGroup(t, "AREA", "", "AISLE_1")
		child := testGroup(t, "AISLE_1", "AREA")
		groups.AddGroup(root)
		groups.AddGroup(child)

		dto, err := service.Lock(ctx, LockTargetCommand{TargetBK: "AREA"})
		if err != nil {
			t.Fatalf("Lock() error = %v", err)
		}
		if dto.GroupStateIn != string(domain.GroupStateNotAvailable) ||
			dto.GroupStateOut != string(domain.GroupStateNotAvailable) {
			t.Errorf("group states = (%v, %v), want both NOT_AVAILABLE", dto.GroupStateIn, dto.GroupStateOut)
		}
		if dto.OperationMode != string(domain.OperationModeNoOperation) {
			t.Errorf("OperationMode = %v, want NO_OPERATION", dto.OperationMode)
		}
		if child.OperationMode != domain.OperationModeNoOperation {
			t.Errorf("child OperationMode = %v, want NO_OPERATION", child.OperationMode)
		}
		if child.GroupStateIn != domain.GroupStateNotAvailable {
			t.Errorf("child GroupStateIn = %v, want NOT_AVAILABLE", child.GroupStateIn)
		}
	})

	t.Run("unknown target is not found", func(t *testing.T) {
		service, _, _ := createTestTargetService()

		_, err := service.Lock(ctx, LockTargetCommand{TargetBK: "NOWHERE"})
		assertAppErrorCode(t, err, appErrors.CodeNotFound)
	})
}

func TestTargetService_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("reopens a permanently locked location", func(t *testing.T) {
		service, locations, _ := createTestTargetService()
		location := testLocation(t, "AREA/A001/0001/0001/0001")
		if err := location.ApplyPermanentLock(nil); err != nil {
			t.Fatalf("ApplyPermanentLock() error = %v", err)
		}
		location.ClearDomainEvents()
		locations.AddLocation(location)

		dto, err := service.Release(ctx, ReleaseTargetCommand{TargetBK: "AREA/A001/0001/0001/0001"})
		if err != nil {
			t.Fatalf("Release() error = %v", err)
		}
		if dto.ErrorCode != string(domain.UnlockStateInAndOut) {
			t.Errorf("ErrorCode = %v, want %v", dto.ErrorCode, string(domain.UnlockStateInAndOut))
		}
	})

	t.Run("release carries no re-allocation hint", func(t *testing.T) {
		service, locations, _ := createTestTargetService()
		location := testLocation(t, "AREA/A001/0001/0001/0001")
		locations.AddLocation(location)

		_, err := service.Release(ctx, ReleaseTargetCommand{TargetBK: "AREA/A001/0001/0001/0001"})
		if err != nil {
			t.Fatalf("Release() error = %v", err)
		}

		for _, event := range location.GetDomainEvents() {
			if e, ok := event.(*domain.TargetLockChangedEvent); ok {
				if e.ReAllocation != nil {
					t.Errorf("ReAllocation = %v, want nil", e.ReAllocation)
				}
			}
		}
	})

	t.Run("reopens a group subtree regardless of prior granular state", func(t *testing.T) {
		service, _, groups := createTestTargetService()
		root := testGroup(t, "AREA", "", "AISLE_1")
		child := testGroup(t, "AISLE_1", "AREA")
		if err := child.ApplyCascadedState(domain.GroupStateNotAvailable, domain.GroupStateAvailable); err != nil {
			t.Fatalf("ApplyCascadedState() error = %v", err)
		}
		groups.AddGroup(root)
		groups.AddGroup(child)

		dto, err := service.Release(ctx, ReleaseTargetCommand{TargetBK: "AREA"})
		if err != nil {
			t.Fatalf("Release() error = %v", err)
		}
		if dto.OperationMode != string(domain.OperationModeInfeedAndOutfeed) {
			t.Errorf("OperationMode = %v, want INFEED_AND_OUTFEED", dto.OperationMode)
		}
		if child.GroupStateIn != domain.GroupStateAvailable || child.GroupStateOut != domain.GroupStateAvailable {
			t.Errorf("child states = (%v, %v), want both AVAILABLE", child.GroupStateIn, child.GroupStateOut)
		}
		if child.OperationMode != domain.OperationModeInfeedAndOutfeed {
			t.Errorf("child OperationMode = %v, want INFEED_AND_OUTFEED", child.OperationMode)
		}
	})
}
