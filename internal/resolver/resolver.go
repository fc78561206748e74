// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     resolver
// Description: Logical service name to container identifier resolution
// License:     MIT
// ============================================================================

package resolver

import (
	"fmt"

	"github.com/msto63/hermes/internal/model"
)

// UnknownServiceError is returned when a logical name has no configured
// container. Resolution fails closed; there is no fallback name.
type UnknownServiceError struct {
	Name string
}

// Error implements the error interface
func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service: %q is not a configured logical name", e.Name)
}

// Resolver maps logical service names to concrete container identifiers.
// The mapping is fixed at construction and safe for concurrent reads.
type Resolver struct {
	mapping map[string]string
}

// New creates a Resolver over a copy of the given mapping
func New(mapping map[string]string) *Resolver {
	m := make(map[string]string, len(mapping))
	for name, container := range mapping {
		m[name] = container
	}
	return &Resolver{mapping: m}
}

// Resolve looks up a logical name. The lookup is exact and case-sensitive;
// no pattern matching, no default.
func (r *Resolver) Resolve(logicalName string) (model.ResolvedTarget, error) {
	container, ok := r.mapping[logicalName]
	if !ok {
		return model.ResolvedTarget{}, &UnknownServiceError{Name: logicalName}
	}
	return model.ResolvedTarget{
		LogicalName: logicalName,
		ContainerID: container,
	}, nil
}

// Count returns the number of configured mappings
func (r *Resolver) Count() int {
	return len(r.mapping)
}
