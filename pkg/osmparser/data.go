package osmparser

type NodeType uint8

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

type NodeCoord struct {
	lat float64
	lon float64
}

func NewNodeCoord(lat, lon float64) NodeCoord {
	return NodeCoord{lat, lon}
}

var (
	// drivable highway values, https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
	acceptedHighway = map[string]struct{}{
		"motorway":       struct{}{},
		"motorway_link":  struct{}{},
		"trunk":          struct{}{},
		"trunk_link":     struct{}{},
		"primary":        struct{}{},
		"primary_link":   struct{}{},
		"secondary":      struct{}{},
		"secondary_link": struct{}{},
		"tertiary":       struct{}{},
		"tertiary_link":  struct{}{},
		"residential":    struct{}{},
		"unclassified":   struct{}{},
		"living_street":  struct{}{},
		"road":           struct{}{},
		"service":        struct{}{},
	}

	// service roads that are not part of the drive network
	rejectedService = map[string]struct{}{
		"parking":          struct{}{},
		"parking_aisle":    struct{}{},
		"private":          struct{}{},
		"emergency_access": struct{}{},
		"drive-through":    struct{}{},
	}

	restrictedAccess = map[string]struct{}{
		"no":      struct{}{},
		"private": struct{}{},
	}
)
