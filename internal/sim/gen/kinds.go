package gen

// TileKind classifies one tile of terrain.
type TileKind uint8

const (
	TileWater TileKind = iota
	TileGrass
	TileBarren
)

func (k TileKind) String() string {
	switch k {
	case TileWater:
		return "water"
	case TileGrass:
		return "grass"
	case TileBarren:
		return "barren"
	default:
		return "unknown"
	}
}

// ResourceKind is the resource occupying one tile, if any. It is only
// meaningful together with the tile kind; consumers must ignore resources
// on water tiles.
type ResourceKind uint8

const (
	ResourceNone ResourceKind = iota
	ResourceTree
	ResourceRock
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceNone:
		return "none"
	case ResourceTree:
		return "tree"
	case ResourceRock:
		return "rock"
	default:
		return "unknown"
	}
}
