package fixture

import "errors"

// ErrBadFixtureFormat is spec.md §7's BadFixtureFormat error kind: the
// fixture text does not match the §6 benchmark/test fixture grammar.
var ErrBadFixtureFormat = errors.New("fixture: bad fixture format")
