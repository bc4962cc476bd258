package application

import (
	"context"
	"testing"

	"github.com/wms-core/location-service/internal/domain"
	"github.com/wms-core/location-service/pkg/logging"
	"github.com/wms-core/location-service/pkg/metrics"
)

func createTestPropagator() (*GroupPropagator, *MockLocationGroupRepository) {
	groups := NewMockLocationGroupRepository()
	logger := logging.New(logging.DefaultConfig("test"))
	m := metrics.New(metrics.DefaultConfig("test"))
	return NewGroupPropagator(groups, logger, m), groups
}

func noMutation(*domain.LocationGroup) error { return nil }

func TestGroupPropagator_Cascade(t *testing.T) {
	ctx := context.Background()

	t.Run("visits the subtree depth-first in stored child order", func(t *testing.T) {
		propagator, groups := createTestPropagator()
		root := testGroup(t, "AREA", "", "AISLE_1", "AISLE_2")
		groups.AddGroup(root)
		groups.AddGroup(testGroup(t, "AISLE_1", "AREA", "RACK_1"))
		groups.AddGroup(testGroup(t, "RACK_1", "AISLE_1"))
		groups.AddGroup(testGroup(t, "AISLE_2", "AREA"))

		var visited []string
		nodes, err := propagator.Cascade(ctx, root, func(g *domain.LocationGroup) error {
			visited = append(visited, g.Name)
			return nil
		})
		if err != nil {
			t.Fatalf("Cascade() error = %v", err)
		}
		if nodes != 4 {
			t.Errorf("nodes = %d, want 4", nodes)
		}

		want := []string{"AISLE_1", "RACK_1", "AISLE_2"}
		if len(visited) != len(want) {
			t.Fatalf("visited = %v, want %v", visited, want)
		}
		for i := range want {
			if visited[i] != want[i] {
				t.Errorf("visited[%d] = %s, want %s", i, visited[i], want[i])
			}
		}
	})

	t.Run("a leaf cascades only itself", func(t *testing.T) {
		propagator, groups := createTestPropagator()
		leaf := testGroup(t, "RACK_1", "")
		groups.AddGroup(leaf)

		nodes, err := propagator.Cascade(ctx, leaf, noMutation)
		if err != nil {
			t.Fatalf("Cascade() error = %v", err)
		}
		if nodes != 1 {
			t.Errorf("nodes = %d, want 1", nodes)
		}
		if len(groups.savedBatch) != 1 || groups.savedBatch[0].Name != "RACK_1" {
			t.Errorf("saved batch = %v, want just RACK_1", groups.savedBatch)
		}
	})

	t.Run("skips dangling child references", func(t *testing.T) {
		propagator, groups := createTestPropagator()
		root := testGroup(t, "AREA", "", "GHOST", "AISLE_1")
		groups.AddGroup(root)
		groups.AddGroup(testGroup(t, "AISLE_1", "AREA"))

		nodes, err := propagator.Cascade(ctx, root, noMutation)
		if err != nil {
			t.Fatalf("Cascade() error = %v", err)
		}
		if nodes != 2 {
			t.Errorf("nodes = %d, want 2", nodes)
		}
	})

	t.Run("visits each node once even with a cyclic reference", func(t *testing.T) {
		propagator, groups := createTestPropagator()
		root := testGroup(t, "AREA", "", "AISLE_1")
		groups.AddGroup(root)
		groups.AddGroup(testGroup(t, "AISLE_1", "AREA", "AREA"))

		visits := 0
		nodes, err := propagator.Cascade(ctx, root, func(*domain.LocationGroup) error {
			visits++
			return nil
		})
		if err != nil {
			t.Fatalf("Cascade() error = %v", err)
		}
		if nodes != 2 {
			t.Errorf("nodes = %d, want 2", nodes)
		}
		if visits != 1 {
			t.Errorf("visits = %d, want 1", visits)
		}
	})

	t.Run("persist failure leaves no batch written", func(t *testing.T) {
		propagator, groups := createTestPropagator()
		root := testGroup(t, "AREA", "", "AISLE_1")
		groups.AddGroup(root)
		groups.AddGroup(testGroup(t, "AISLE_1", "AREA"))
		groups.SetSaveAllError(context.DeadlineExceeded)

		_, err := propagator.Cascade(ctx, root, noMutation)
		if err == nil {
			t.Fatal("Cascade() should return error when SaveAll fails")
		}
		if groups.savedBatch != nil {
			t.Errorf("saved batch = %v, want none", groups.savedBatch)
		}
	})
}
