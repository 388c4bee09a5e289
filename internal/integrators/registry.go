package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/odedash/internal/dynamo"
)

// DefaultSolver is the stiffness-switching solver.
const DefaultSolver = "auto"

var factories = map[string]func() dynamo.Stepper{
	"auto":       func() dynamo.Stepper { return NewAuto() },
	"rk45":       func() dynamo.Stepper { return NewRK45() },
	"rosenbrock": func() dynamo.Stepper { return NewRosenbrock() },
}

// Factory returns a constructor for the named solver. Each run needs its
// own Stepper, so callers keep the factory rather than an instance.
func Factory(name string) (func() dynamo.Stepper, error) {
	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s (available: %v)", name, Names())
	}
	return fn, nil
}

// Names lists the available solvers in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
