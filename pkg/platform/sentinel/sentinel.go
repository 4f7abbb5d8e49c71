// Package sentinel holds infrastructure facts that stores report and
// services translate into domain errors.
package sentinel

import "errors"

// ErrNotFound means the store holds no record under the requested key.
// Validation failures belong in pkg/domain-errors instead.
var ErrNotFound = errors.New("not found")
