package kdag

import "errors"

// Sentinel errors for common failure cases.
var (
	ErrNilRoot           = errors.New("nil root")
	ErrNodeAlreadyExists = errors.New("node already exists")
	ErrNodeNotFound      = errors.New("node not found")
	ErrCycleDetected     = errors.New("cycle detected in graph")
	ErrOrphanedNodes     = errors.New("orphaned nodes found")
	ErrInvalidNodeID     = errors.New("invalid node ID")
	ErrInvalidTopology   = errors.New("invalid topology")
)
