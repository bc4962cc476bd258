package application

import (
	"context"
	"fmt"

	"github.com/wms-core/location-service/internal/domain"
	"github.com/wms-core/location-service/pkg/errors"
	"github.com/wms-core/location-service/pkg/logging"
	"github.com/wms-core/location-service/pkg/metrics"
)

// GroupPropagator walks a group subtree depth-first and pushes the
// originating node's availability and operation mode onto every descendant.
// The root and the whole subtree are persisted in a single transaction, so
// a version conflict on any node aborts the cascade without partial writes.
type GroupPropagator struct {
	groups  LocationGroupRepository
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewGroupPropagator creates a new GroupPropagator
func NewGroupPropagator(groups LocationGroupRepository, logger *logging.Logger, m *metrics.Metrics) *GroupPropagator {
	return &GroupPropagator{
		groups:  groups,
		logger:  logger,
		metrics: m,
	}
}

// Cascade applies the given mutation to every descendant of root and saves
// root together with the subtree atomically. The root itself must already
// carry its new state; descendants are mutated through apply, which must not
// record domain events. Returns the number of nodes written.
func (p *GroupPropagator) Cascade(ctx context.Context, root *domain.LocationGroup, apply func(*domain.LocationGroup) error) (int, error) {
	descendants, err := p.collectDescendants(ctx, root)
	if err != nil {
		return 0, err
	}

	for _, descendant := range descendants {
		if err := apply(descendant); err != nil {
			return 0, err
		}
	}

	nodes := append([]*domain.LocationGroup{root}, descendants...)
	if err := p.groups.SaveAll(ctx, nodes); err != nil {
		if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.CodeConcurrentModification {
			p.metrics.RecordCascadeConflict()
		}
		return 0, err
	}

	p.metrics.RecordCascade(len(nodes))
	return len(nodes), nil
}

// collectDescendants resolves child names depth-first, preserving the stored
// child order. A dangling child reference is skipped with a warning rather
// than failing the cascade.
func (p *GroupPropagator) collectDescendants(ctx context.Context, root *domain.LocationGroup) ([]*domain.LocationGroup, error) {
	var descendants []*domain.LocationGroup

	stack := make([]string, 0, len(root.ChildNames))
	for i := len(root.ChildNames) - 1; i >= 0; i-- {
		stack = append(stack, root.ChildNames[i])
	}

	visited := map[string]bool{root.Name: true}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[name] {
			continue
		}
		visited[name] = true

		child, err := p.groups.FindByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load group %q: %w", name, err)
		}
		if child == nil {
			p.logger.WithContext(ctx).Warn("Group hierarchy references missing child",
				"group", root.Name, "child", name)
			continue
		}

		descendants = append(descendants, child)
		for i := len(child.ChildNames) - 1; i >= 0; i-- {
			stack = append(stack, child.ChildNames[i])
		}
	}

	return descendants, nil
}
