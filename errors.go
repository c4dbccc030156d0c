package rendergraph

import "errors"

// Structural errors.
var (
	ErrNodeNotFound          = errors.New("rendergraph: node not found")
	ErrUnknownNodeType       = errors.New("rendergraph: unknown node type")
	ErrOutputExists          = errors.New("rendergraph: segment already has an output node")
	ErrReservedNode          = errors.New("rendergraph: output node cannot be deleted")
	ErrNodeHasConnections    = errors.New("rendergraph: node still has connections")
	ErrSelfLoop              = errors.New("rendergraph: connection from a node to itself")
	ErrCycleDetected         = errors.New("rendergraph: connection would create a cycle")
	ErrConnectionExists      = errors.New("rendergraph: connection already exists")
	ErrConnectionNotFound    = errors.New("rendergraph: connection not found")
	ErrClosed                = errors.New("rendergraph: segment closed")
	ErrNameRequired          = errors.New("rendergraph: segment name is required")
	ErrIncompatiblePorts     = errors.New("rendergraph: incompatible ports")
	ErrInputAlreadyConnected = errors.New("rendergraph: input already has a producer")
)
