package routing

import "errors"

var (
	ErrPathNotFound   = errors.New("no valid path found")
	ErrMalformedGraph = errors.New("malformed road graph")
	ErrUnknownNode    = errors.New("node is not in the road graph")
)
