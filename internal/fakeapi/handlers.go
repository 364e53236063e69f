package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/five82/mapgrid/internal/mapapi"
)

var (
	errMapNotFound   = errors.New("map not found")
	errFloorNotFound = errors.New("floor not found")
	errNameRequired  = errors.New("name is required")
	errBadDimensions = errors.New("dimensions must be positive")
)

// errResponse is the JSON error body the real backend sends.
type errResponse struct {
	HTTPStatusCode int    `json:"-"`
	Message        string `json:"message"`
}

func (e *errResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	_ = render.Render(w, r, &errResponse{HTTPStatusCode: status, Message: message})
}

func renderDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errMapNotFound), errors.Is(err, errFloorNotFound):
		renderError(w, r, http.StatusNotFound, err.Error())
	default:
		renderError(w, r, http.StatusBadRequest, err.Error())
	}
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, chi.URLParam(r, name))
	}
	return id, nil
}

func (s *Server) listMaps(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]mapapi.Map, 0, len(s.maps))
	for _, rec := range s.maps {
		m := s.mapViewLocked(rec)
		m.Floors = []mapapi.Floor{}
		out = append(out, m)
	}
	s.mu.Unlock()
	sortMaps(out)
	render.JSON(w, r, out)
}

func (s *Server) getMap(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	rec, ok := s.maps[id]
	var m mapapi.Map
	if ok {
		m = s.mapViewLocked(rec)
	}
	s.mu.Unlock()
	if !ok {
		renderError(w, r, http.StatusNotFound, fmt.Sprintf("map %d not found", id))
		return
	}
	render.JSON(w, r, m)
}

func (s *Server) createMap(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		renderError(w, r, http.StatusBadRequest, errNameRequired.Error())
		return
	}
	s.mu.Lock()
	m := s.mapViewLocked(s.addMapLocked(name))
	s.mu.Unlock()
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, m)
}

func (s *Server) updateMap(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		renderError(w, r, http.StatusBadRequest, errNameRequired.Error())
		return
	}
	s.mu.Lock()
	rec, ok := s.maps[id]
	if ok {
		rec.name = name
	}
	s.mu.Unlock()
	if !ok {
		renderError(w, r, http.StatusNotFound, fmt.Sprintf("map %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteMap(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	rec, ok := s.maps[id]
	if ok {
		for _, floorID := range rec.floors {
			delete(s.floors, floorID)
		}
		delete(s.maps, id)
	}
	s.mu.Unlock()
	if !ok {
		renderError(w, r, http.StatusNotFound, fmt.Sprintf("map %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getFloor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "floorID")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	floor, ok := s.Floor(id)
	if !ok {
		renderError(w, r, http.StatusNotFound, fmt.Sprintf("floor %d not found", id))
		return
	}
	render.JSON(w, r, floor)
}

func (s *Server) createFloor(w http.ResponseWriter, r *http.Request) {
	var dto mapapi.FloorDTO
	if err := render.DecodeJSON(r.Body, &dto); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	floor, err := s.addFloorLocked(dto)
	var out mapapi.Floor
	if err == nil {
		out = floor.Clone()
	}
	s.mu.Unlock()
	if err != nil {
		renderDomainError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, out)
}

func (s *Server) updateFloor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "floorID")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var dto mapapi.FloorDTO
	if err := render.DecodeJSON(r.Body, &dto); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.editFloor(id, dto); err != nil {
		renderDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) editFloor(id int64, dto mapapi.FloorDTO) error {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return errNameRequired
	}
	if dto.DimensionX <= 0 || dto.DimensionY <= 0 {
		return errBadDimensions
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	floor, ok := s.floors[id]
	if !ok {
		return errFloorNotFound
	}
	if dto.MapID != floor.MapID {
		target, ok := s.maps[dto.MapID]
		if !ok {
			return errMapNotFound
		}
		if source, ok := s.maps[floor.MapID]; ok {
			source.floors = removeID(source.floors, id)
		}
		target.floors = append(target.floors, id)
		floor.MapID = dto.MapID
	}
	floor.Name = name
	floor.Number = dto.Number
	if dto.DimensionX != floor.DimensionX || dto.DimensionY != floor.DimensionY {
		var kept []mapapi.Cell
		for _, c := range floor.Cells {
			if c.X < dto.DimensionX && c.Y < dto.DimensionY {
				kept = append(kept, c)
			}
		}
		floor.DimensionX = dto.DimensionX
		floor.DimensionY = dto.DimensionY
		floor.Cells = s.generateCellsLocked(id, dto.DimensionX, dto.DimensionY, kept)
	}
	return nil
}

func (s *Server) deleteFloor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "floorID")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	floor, ok := s.floors[id]
	if ok {
		if rec, found := s.maps[floor.MapID]; found {
			rec.floors = removeID(rec.floors, id)
		}
		delete(s.floors, id)
	}
	s.mu.Unlock()
	if !ok {
		renderError(w, r, http.StatusNotFound, fmt.Sprintf("floor %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateCells(w http.ResponseWriter, r *http.Request) {
	var batch mapapi.CellsBatch
	if err := render.DecodeJSON(r.Body, &batch); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	if err := mapapi.ValidateBatch(&batch); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	floor, ok := s.floors[batch.FloorID]
	if !ok {
		renderError(w, r, http.StatusNotFound, fmt.Sprintf("floor %d not found", batch.FloorID))
		return
	}
	index := make(map[[2]int]int, len(floor.Cells))
	for i, c := range floor.Cells {
		index[[2]int{c.X, c.Y}] = i
	}
	for _, u := range batch.Cells {
		if _, ok := index[[2]int{u.X, u.Y}]; !ok {
			renderError(w, r, http.StatusBadRequest, fmt.Sprintf("cell (%d,%d) outside floor %d", u.X, u.Y, floor.ID))
			return
		}
	}
	for _, u := range batch.Cells {
		floor.Cells[index[[2]int{u.X, u.Y}]].IsFilled = u.IsFilled
	}
	w.WriteHeader(http.StatusNoContent)
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func sortMaps(maps []mapapi.Map) {
	sort.Slice(maps, func(i, j int) bool { return maps[i].ID < maps[j].ID })
}
