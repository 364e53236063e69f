package mapapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/five82/mapgrid/internal/transport"
)

// FloorService is the slice of the API the grid manager depends on.
type FloorService interface {
	GetFloor(ctx context.Context, floorID int64) (*Floor, error)
	UpdateCells(ctx context.Context, batch *CellsBatch) error
}

// Service lists every remote operation. It is implemented by *Client and can
// be faked in tests.
type Service interface {
	FloorService
	ListMaps(ctx context.Context) ([]Map, error)
	GetMap(ctx context.Context, id int64) (*Map, error)
	CreateMap(ctx context.Context, name string) (*Map, error)
	DeleteMap(ctx context.Context, id int64) error
	EditMap(ctx context.Context, id int64, newName string) error
	CreateFloor(ctx context.Context, dto *FloorDTO) (*Floor, error)
	DeleteFloor(ctx context.Context, floorID int64) error
	EditFloor(ctx context.Context, floorID int64, dto *FloorDTO) error
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// Client talks to the map API.
type Client struct {
	t *transport.Transport
}

// NewClient wraps a configured transport.
func NewClient(t *transport.Transport) *Client {
	return &Client{t: t}
}

// ListMaps retrieves map summaries.
func (c *Client) ListMaps(ctx context.Context) ([]Map, error) {
	var maps []Map
	if err := c.getJSON(ctx, "/api/map", &maps); err != nil {
		return nil, err
	}
	return maps, nil
}

// GetMap retrieves one map with its floor summaries.
func (c *Client) GetMap(ctx context.Context, id int64) (*Map, error) {
	if id <= 0 {
		return nil, required("get map", "id")
	}
	var m Map
	if err := c.getJSON(ctx, "/api/map/"+pathID(id), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMap creates a map. The name is trimmed and sent as a query parameter.
func (c *Client) CreateMap(ctx context.Context, name string) (*Map, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, required("create map", "name")
	}
	res, err := c.t.Do(ctx, "/api/map", transport.Request{
		Method: http.MethodPost,
		Query:  url.Values{"name": {trimmed}},
	})
	if err != nil {
		return nil, err
	}
	var m Map
	if err := decode(res, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMap removes a map.
func (c *Client) DeleteMap(ctx context.Context, id int64) error {
	if id <= 0 {
		return required("delete map", "id")
	}
	_, err := c.t.Do(ctx, "/api/map/"+pathID(id), transport.Request{Method: http.MethodDelete})
	return err
}

// EditMap renames a map.
func (c *Client) EditMap(ctx context.Context, id int64, newName string) error {
	if id <= 0 {
		return required("edit map", "id")
	}
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return required("edit map", "name")
	}
	_, err := c.t.Do(ctx, "/api/map/UpdateMap/"+pathID(id), transport.Request{
		Method: http.MethodPut,
		Body:   mapNameBody{Name: trimmed},
	})
	return err
}

// GetFloor retrieves a floor with its full cell grid.
func (c *Client) GetFloor(ctx context.Context, floorID int64) (*Floor, error) {
	if floorID <= 0 {
		return nil, required("get floor", "floorId")
	}
	var f Floor
	if err := c.getJSON(ctx, "/api/floor/"+pathID(floorID), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFloor creates a floor; the server generates its cells.
func (c *Client) CreateFloor(ctx context.Context, dto *FloorDTO) (*Floor, error) {
	payload, err := validateFloorDTO("create floor", dto)
	if err != nil {
		return nil, err
	}
	res, err := c.t.Do(ctx, "/api/floor", transport.Request{
		Method: http.MethodPost,
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}
	var f Floor
	if err := decode(res, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFloor removes a floor.
func (c *Client) DeleteFloor(ctx context.Context, floorID int64) error {
	if floorID <= 0 {
		return required("delete floor", "floorId")
	}
	_, err := c.t.Do(ctx, "/api/floor/"+pathID(floorID), transport.Request{Method: http.MethodDelete})
	return err
}

// EditFloor replaces a floor's attributes.
func (c *Client) EditFloor(ctx context.Context, floorID int64, dto *FloorDTO) error {
	if floorID <= 0 {
		return required("edit floor", "floorId")
	}
	payload, err := validateFloorDTO("edit floor", dto)
	if err != nil {
		return err
	}
	_, err = c.t.Do(ctx, "/api/floor/"+pathID(floorID), transport.Request{
		Method: http.MethodPut,
		Body:   payload,
	})
	return err
}

// UpdateCells submits a batch of cell changes for one floor.
func (c *Client) UpdateCells(ctx context.Context, batch *CellsBatch) error {
	if err := ValidateBatch(batch); err != nil {
		return err
	}
	_, err := c.t.Do(ctx, "/api/cell/update", transport.Request{
		Method: http.MethodPost,
		Body:   batch,
	})
	return err
}

// ValidateBatch checks that a batch names a floor and lists each coordinate
// at most once.
func ValidateBatch(batch *CellsBatch) error {
	const op = "update cells"
	if batch == nil {
		return required(op, "batch")
	}
	if batch.FloorID <= 0 {
		return required(op, "floorId")
	}
	if len(batch.Cells) == 0 {
		return required(op, "cells")
	}
	seen := make(map[[2]int]struct{}, len(batch.Cells))
	for _, cell := range batch.Cells {
		if cell.X < 0 || cell.Y < 0 {
			return invalid(op, "cells", fmt.Sprintf("has negative coordinate (%d,%d)", cell.X, cell.Y))
		}
		key := [2]int{cell.X, cell.Y}
		if _, dup := seen[key]; dup {
			return invalid(op, "cells", fmt.Sprintf("repeats coordinate (%d,%d)", cell.X, cell.Y))
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validateFloorDTO(op string, dto *FloorDTO) (FloorDTO, error) {
	if dto == nil {
		return FloorDTO{}, required(op, "dto")
	}
	out := *dto
	out.Name = strings.TrimSpace(out.Name)
	if out.Name == "" {
		return FloorDTO{}, required(op, "name")
	}
	if out.DimensionX <= 0 {
		return FloorDTO{}, invalid(op, "dimensionX", "must be positive")
	}
	if out.DimensionY <= 0 {
		return FloorDTO{}, invalid(op, "dimensionY", "must be positive")
	}
	if out.MapID <= 0 {
		return FloorDTO{}, required(op, "mapId")
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	res, err := c.t.Do(ctx, path, transport.Request{})
	if err != nil {
		return err
	}
	return decode(res, dest)
}

func decode(res *transport.Result, dest any) error {
	if res == nil {
		return fmt.Errorf("decode response: unexpected empty response")
	}
	return res.Decode(dest)
}

func pathID(id int64) string {
	return url.PathEscape(strconv.FormatInt(id, 10))
}
