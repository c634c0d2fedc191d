package operations

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"github.com/hackico-ai/hati-operation/result"
)

// ErrOperationNotFound is returned by Retrieve when no registered operation matches the requested
// id and version.
var ErrOperationNotFound = errors.New("operation not found in catalog")

// Runner is the untyped view of an operation. *Operation implements it.
type Runner interface {
	Def() Definition
	Registry() *Registry
	Run(b Bundle, args any, opts ...CallOption) (result.Result[any], error)
}

// Catalog is a store for operations that allows retrieval based on their definitions.
type Catalog struct {
	ops []Runner
	mu  sync.RWMutex
}

// NewCatalog creates a new Catalog with the provided operations.
func NewCatalog(ops ...Runner) *Catalog {
	return &Catalog{
		ops: ops,
	}
}

// Register adds operations to the catalog.
func (c *Catalog) Register(ops ...Runner) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ops = append(c.ops, ops...)
}

// Retrieve retrieves an operation from the catalog based on its definition.
// The definition must match the operation's ID; when def has a version it must match too,
// otherwise the highest version registered under the ID is returned.
func (c *Catalog) Retrieve(def Definition) (Runner, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var found Runner
	for _, op := range c.ops {
		opDef := op.Def()
		if opDef.ID != def.ID {
			continue
		}

		if def.Version != nil {
			if opDef.Version != nil && opDef.Version.Equal(def.Version) {
				return op, nil
			}

			continue
		}

		if found == nil || compareVersions(opDef, found.Def()) > 0 {
			found = op
		}
	}

	if found == nil {
		return nil, ErrOperationNotFound
	}

	return found, nil
}

// List returns the registered operations ordered by ID and version.
func (c *Catalog) List() []Runner {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ops := slices.Clone(c.ops)
	slices.SortStableFunc(ops, func(a, b Runner) int {
		if n := cmp.Compare(a.Def().ID, b.Def().ID); n != 0 {
			return n
		}

		return compareVersions(a.Def(), b.Def())
	})

	return ops
}

// compareVersions orders definitions by version, an unset version sorting first.
func compareVersions(a, b Definition) int {
	switch {
	case a.Version == nil && b.Version == nil:
		return 0
	case a.Version == nil:
		return -1
	case b.Version == nil:
		return 1
	default:
		return a.Version.Compare(b.Version)
	}
}
