package mapapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/five82/mapgrid/internal/transport"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) add(req recordedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		rec.add(recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	tr, err := transport.New(transport.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("transport.New returned error: %v", err)
	}
	return NewClient(tr), rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_MapEndpoints(t *testing.T) {
	t.Parallel()

	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/map":
			writeJSON(w, 200, []Map{{ID: 1, Name: "HQ", NumberOfFloors: 2}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/map/1":
			writeJSON(w, 200, Map{ID: 1, Name: "HQ", Floors: []Floor{{ID: 10, Name: "Ground"}}, NumberOfFloors: 1})
		case r.Method == http.MethodPost && r.URL.Path == "/api/map":
			writeJSON(w, 201, Map{ID: 2, Name: r.URL.Query().Get("name")})
		case r.Method == http.MethodPut && r.URL.Path == "/api/map/UpdateMap/1":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/map/1":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	maps, err := c.ListMaps(ctx)
	if err != nil {
		t.Fatalf("ListMaps returned error: %v", err)
	}
	if len(maps) != 1 || maps[0].Name != "HQ" || maps[0].NumberOfFloors != 2 {
		t.Fatalf("ListMaps = %#v, want one map HQ", maps)
	}

	m, err := c.GetMap(ctx, 1)
	if err != nil {
		t.Fatalf("GetMap returned error: %v", err)
	}
	if len(m.Floors) != 1 || m.Floors[0].ID != 10 {
		t.Fatalf("GetMap floors = %#v, want floor 10", m.Floors)
	}

	created, err := c.CreateMap(ctx, "  Annex  ")
	if err != nil {
		t.Fatalf("CreateMap returned error: %v", err)
	}
	if created.ID != 2 || created.Name != "Annex" {
		t.Fatalf("CreateMap = %#v, want id=2 name=Annex", created)
	}

	if err := c.EditMap(ctx, 1, " Head Office "); err != nil {
		t.Fatalf("EditMap returned error: %v", err)
	}
	if err := c.DeleteMap(ctx, 1); err != nil {
		t.Fatalf("DeleteMap returned error: %v", err)
	}

	reqs := rec.all()
	if len(reqs) != 5 {
		t.Fatalf("requests = %d, want 5", len(reqs))
	}
	if reqs[2].Query != "name=Annex" {
		t.Fatalf("create query = %q, want name=Annex", reqs[2].Query)
	}
	if reqs[3].Body != `{"name":"Head Office"}` {
		t.Fatalf("edit body = %q, want trimmed name", reqs[3].Body)
	}
}

func TestClient_FloorAndCellEndpoints(t *testing.T) {
	t.Parallel()

	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/floor/10":
			writeJSON(w, 200, Floor{ID: 10, DimensionX: 2, DimensionY: 1, MapID: 1, Cells: []Cell{
				{ID: 1, X: 0, Y: 0, FloorID: 10},
				{ID: 2, X: 1, Y: 0, IsFilled: true, FloorID: 10},
			}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/floor":
			var dto FloorDTO
			if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
				writeJSON(w, 400, map[string]string{"message": err.Error()})
				return
			}
			writeJSON(w, 201, Floor{ID: 11, Name: dto.Name, DimensionX: dto.DimensionX, DimensionY: dto.DimensionY, MapID: dto.MapID})
		case r.Method == http.MethodPut && r.URL.Path == "/api/floor/10":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/floor/10":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/api/cell/update":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	floor, err := c.GetFloor(ctx, 10)
	if err != nil {
		t.Fatalf("GetFloor returned error: %v", err)
	}
	if len(floor.Cells) != floor.CellCount() || !floor.Cells[1].IsFilled {
		t.Fatalf("GetFloor = %#v, want 2 cells with (1,0) filled", floor)
	}

	dto := &FloorDTO{Name: " Roof ", Number: 3, DimensionX: 4, DimensionY: 5, MapID: 1}
	created, err := c.CreateFloor(ctx, dto)
	if err != nil {
		t.Fatalf("CreateFloor returned error: %v", err)
	}
	if created.ID != 11 || created.Name != "Roof" {
		t.Fatalf("CreateFloor = %#v, want id=11 name=Roof", created)
	}
	if created.DimensionX != 4 || created.DimensionY != 5 || created.MapID != 1 {
		t.Fatalf("CreateFloor = %#v, want 4x5 on map 1", created)
	}
	if dto.Name != " Roof " {
		t.Fatalf("CreateFloor mutated caller dto: %q", dto.Name)
	}

	if err := c.EditFloor(ctx, 10, dto); err != nil {
		t.Fatalf("EditFloor returned error: %v", err)
	}
	if err := c.DeleteFloor(ctx, 10); err != nil {
		t.Fatalf("DeleteFloor returned error: %v", err)
	}
	batch := &CellsBatch{FloorID: 10, Cells: []CellUpdateDTO{{X: 1, Y: 0, IsFilled: false}}}
	if err := c.UpdateCells(ctx, batch); err != nil {
		t.Fatalf("UpdateCells returned error: %v", err)
	}

	reqs := rec.all()
	if len(reqs) != 5 {
		t.Fatalf("requests = %d, want 5", len(reqs))
	}
	if want := `{"name":"Roof","number":3,"dimensionX":4,"dimensionY":5,"mapId":1}`; reqs[1].Body != want {
		t.Fatalf("create floor body = %q, want %q", reqs[1].Body, want)
	}
	last := reqs[len(reqs)-1]
	if last.Body != `{"floorId":10,"cells":[{"x":1,"y":0,"isFilled":false}]}` {
		t.Fatalf("update body = %q", last.Body)
	}
}

func TestClient_LoadsLargeFloor(t *testing.T) {
	t.Parallel()

	const dx, dy = 400, 400
	floor := Floor{ID: 12, Name: "Warehouse", DimensionX: dx, DimensionY: dy, MapID: 1}
	floor.Cells = make([]Cell, 0, dx*dy)
	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			floor.Cells = append(floor.Cells, Cell{ID: int64(y*dx + x + 1), X: x, Y: y, IsFilled: (x+y)%7 == 0, FloorID: 12})
		}
	}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, floor)
	})

	got, err := c.GetFloor(context.Background(), 12)
	if err != nil {
		t.Fatalf("GetFloor returned error: %v", err)
	}
	if len(got.Cells) != dx*dy || got.Cells[dx*dy-1].X != dx-1 || got.Cells[dx*dy-1].Y != dy-1 {
		t.Fatalf("GetFloor cells = %d, want %d ending at (%d,%d)", len(got.Cells), dx*dy, dx-1, dy-1)
	}
}

func TestClient_ValidationFailsBeforeRequest(t *testing.T) {
	t.Parallel()

	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	_, errCreate := c.CreateMap(ctx, "   ")
	_, errGetMap := c.GetMap(ctx, 0)
	_, errGetFloor := c.GetFloor(ctx, -1)
	_, errCreateFloor := c.CreateFloor(ctx, nil)
	_, errCreateFloorDims := c.CreateFloor(ctx, &FloorDTO{Name: "A", DimensionX: 0, DimensionY: 2, MapID: 1})
	errs := map[string]error{
		"CreateMap":         errCreate,
		"GetMap":            errGetMap,
		"GetFloor":          errGetFloor,
		"CreateFloor nil":   errCreateFloor,
		"CreateFloor dims":  errCreateFloorDims,
		"DeleteMap":         c.DeleteMap(ctx, 0),
		"EditMap id":        c.EditMap(ctx, 0, "x"),
		"EditMap name":      c.EditMap(ctx, 1, ""),
		"DeleteFloor":       c.DeleteFloor(ctx, 0),
		"EditFloor id":      c.EditFloor(ctx, 0, &FloorDTO{Name: "A", DimensionX: 1, DimensionY: 1, MapID: 1}),
		"EditFloor dto":     c.EditFloor(ctx, 1, nil),
		"UpdateCells nil":   c.UpdateCells(ctx, nil),
		"UpdateCells empty": c.UpdateCells(ctx, &CellsBatch{FloorID: 1}),
		"UpdateCells dup": c.UpdateCells(ctx, &CellsBatch{FloorID: 1, Cells: []CellUpdateDTO{
			{X: 1, Y: 1}, {X: 1, Y: 1, IsFilled: true},
		}}),
	}
	for name, err := range errs {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: error = %v, want ValidationError", name, err)
			continue
		}
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: errors.Is(ErrValidation) = false", name)
		}
	}
	if n := len(rec.all()); n != 0 {
		t.Fatalf("requests sent = %d, want 0", n)
	}
}

func TestClient_SurfacesRemoteErrors(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/map/99":
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "map 99 not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "db down"})
		}
	})

	_, err := c.GetMap(context.Background(), 99)
	var remote *transport.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("GetMap error = %v, want RemoteError", err)
	}
	if remote.Status != 404 || remote.Message != "map 99 not found" {
		t.Fatalf("remote = %d %q, want 404 map 99 not found", remote.Status, remote.Message)
	}

	err = c.UpdateCells(context.Background(), &CellsBatch{FloorID: 1, Cells: []CellUpdateDTO{{X: 0, Y: 0, IsFilled: true}}})
	if !errors.As(err, &remote) || remote.Status != 500 || err.Error() != "db down" {
		t.Fatalf("UpdateCells error = %v, want 500 db down", err)
	}
}

func TestClient_DeleteDoesNotParseBody(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.DeleteMap(context.Background(), 5); err != nil {
		t.Fatalf("DeleteMap returned error: %v", err)
	}
}

func TestClient_MalformedJSONFails(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not-json"))
	})
	if _, err := c.ListMaps(context.Background()); err == nil {
		t.Fatalf("ListMaps returned nil error for malformed JSON")
	}
}

func TestFloorHelpers(t *testing.T) {
	f := Floor{DimensionX: 3, DimensionY: 2, Cells: []Cell{{X: 0, Y: 0}}}
	if f.CellCount() != 6 {
		t.Fatalf("CellCount = %d, want 6", f.CellCount())
	}
	if !f.InBounds(2, 1) || f.InBounds(3, 0) || f.InBounds(0, -1) {
		t.Fatalf("InBounds mismatch")
	}
	dup := f.Clone()
	dup.Cells[0].IsFilled = true
	if f.Cells[0].IsFilled {
		t.Fatalf("Clone should copy cells")
	}
}
