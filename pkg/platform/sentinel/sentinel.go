package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and caches return these
// (optionally wrapped) so services can translate them into domain errors.
//
// ErrNotFound states that the entity does not exist; a cache miss and an
// absent row both report it. For validation errors (bad input, missing
// fields), use pkg/domain-errors directly.
var ErrNotFound = errors.New("not found")
