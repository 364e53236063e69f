package mapapi

// Map mirrors the map resource. Floors carries summaries only; cells are
// fetched per floor.
type Map struct {
	ID             int64   `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Floors         []Floor `json:"floors" yaml:"floors,omitempty"`
	NumberOfFloors int     `json:"numberOfFloors" yaml:"numberOfFloors"`
}

// Floor mirrors the floor resource returned by /api/floor/{id}.
type Floor struct {
	ID         int64  `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Number     int    `json:"number" yaml:"number"`
	DimensionX int    `json:"dimensionX" yaml:"dimensionX"`
	DimensionY int    `json:"dimensionY" yaml:"dimensionY"`
	MapID      int64  `json:"mapId" yaml:"mapId"`
	Cells      []Cell `json:"cells" yaml:"cells,omitempty"`
}

// CellCount returns the number of cells a fully loaded floor holds.
func (f Floor) CellCount() int {
	return f.DimensionX * f.DimensionY
}

// InBounds reports whether (x, y) addresses a cell on the floor.
func (f Floor) InBounds(x, y int) bool {
	return x >= 0 && x < f.DimensionX && y >= 0 && y < f.DimensionY
}

// Clone returns a copy of the floor with its own cell slice.
func (f Floor) Clone() Floor {
	dup := f
	if f.Cells != nil {
		dup.Cells = make([]Cell, len(f.Cells))
		copy(dup.Cells, f.Cells)
	}
	return dup
}

// Cell is one grid position. ID stays zero until the remote store assigns it.
type Cell struct {
	ID       int64 `json:"id" yaml:"id"`
	X        int   `json:"x" yaml:"x"`
	Y        int   `json:"y" yaml:"y"`
	IsFilled bool  `json:"isFilled" yaml:"isFilled"`
	FloorID  int64 `json:"floorId" yaml:"floorId"`
}

// FloorDTO is the create and edit payload for floors.
type FloorDTO struct {
	Name       string `json:"name"`
	Number     int    `json:"number"`
	DimensionX int    `json:"dimensionX"`
	DimensionY int    `json:"dimensionY"`
	MapID      int64  `json:"mapId"`
}

// CellUpdateDTO is a single coordinate delta.
type CellUpdateDTO struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	IsFilled bool `json:"isFilled"`
}

// CellsBatch is the bulk cell update for exactly one floor.
type CellsBatch struct {
	FloorID int64           `json:"floorId"`
	Cells   []CellUpdateDTO `json:"cells"`
}

type mapNameBody struct {
	Name string `json:"name"`
}
