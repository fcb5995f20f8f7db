package dispatch

// The width of a dispatch grid row. Large 1-D workloads are laid out as
// rows of RowWidth items to stay under per-dimension dispatch limits.
const RowWidth uint32 = 256

// A 2-D grid of work items.
type Grid struct {
	Width  uint32
	Height uint32
}

// Build a grid of 256-wide rows covering count items. The last row may
// contain items past count; kernels must bounds check their index.
func GridFor(count uint32) Grid {
	if count == 0 {
		return Grid{}
	}
	return Grid{
		Width:  RowWidth,
		Height: (count + RowWidth - 1) / RowWidth,
	}
}

// Build a single row grid of exactly count items.
func Linear(count uint32) Grid {
	if count == 0 {
		return Grid{}
	}
	return Grid{Width: count, Height: 1}
}

// Get the total number of work items in the grid.
func (g Grid) Size() uint64 {
	return uint64(g.Width) * uint64(g.Height)
}

// Get the flat index of the work item at (x, y).
func (g Grid) Index(x, y uint32) uint32 {
	return y*g.Width + x
}
