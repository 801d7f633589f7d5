package domain

import "errors"

// ErrNotFound marks lookups against the static catalogs or the screenshot
// collection that matched nothing.
var ErrNotFound = errors.New("not found")
