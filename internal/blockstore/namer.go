package blockstore

import "fmt"

// Namer derives an artifact name from a block height.
type Namer interface {
	Name(height int64) string
}

// HeightNamer names artifacts Prefix<height>Suffix.
type HeightNamer struct {
	Prefix string
	Suffix string
}

// DefaultNamer produces blocks_<height>.dat.
var DefaultNamer = HeightNamer{Prefix: "blocks_", Suffix: ".dat"}

func (n HeightNamer) Name(height int64) string {
	return fmt.Sprintf("%s%d%s", n.Prefix, height, n.Suffix)
}
