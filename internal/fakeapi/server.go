// Package fakeapi is an in-memory implementation of the map API for tests and
// local development.
package fakeapi

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/five82/mapgrid/internal/mapapi"
)

type mapRecord struct {
	id     int64
	name   string
	floors []int64
}

type fault struct {
	status  int
	message string
}

// Server holds maps and floors in memory and serves them over HTTP.
type Server struct {
	log      *logrus.Entry
	requests atomic.Int64

	mu          sync.Mutex
	nextMapID   int64
	nextFloorID int64
	nextCellID  int64
	maps        map[int64]*mapRecord
	floors      map[int64]*mapapi.Floor
	faults      []fault
}

// New returns an empty server.
func New(logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		log:    logger.WithField("component", "fakeapi"),
		maps:   make(map[int64]*mapRecord),
		floors: make(map[int64]*mapapi.Floor),
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)
	r.Use(s.injectFaults)

	r.Route("/api", func(r chi.Router) {
		r.Route("/map", func(r chi.Router) {
			r.Get("/", s.listMaps)
			r.Post("/", s.createMap)
			r.Put("/UpdateMap/{id}", s.updateMap)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getMap)
				r.Delete("/", s.deleteMap)
			})
		})
		r.Route("/floor", func(r chi.Router) {
			r.Post("/", s.createFloor)
			r.Route("/{floorID}", func(r chi.Router) {
				r.Get("/", s.getFloor)
				r.Put("/", s.updateFloor)
				r.Delete("/", s.deleteFloor)
			})
		})
		r.Post("/cell/update", s.updateCells)
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("fake map api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// FailNext makes the next request fail with status and a JSON message body.
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{status: status, message: message})
}

// Requests returns how many requests the server has received.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// SeedMap stores a map directly, bypassing HTTP.
func (s *Server) SeedMap(name string) mapapi.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.addMapLocked(strings.TrimSpace(name))
	return s.mapViewLocked(rec)
}

// SeedFloor stores a floor with a generated grid directly, bypassing HTTP.
func (s *Server) SeedFloor(dto mapapi.FloorDTO) (mapapi.Floor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	floor, err := s.addFloorLocked(dto)
	if err != nil {
		return mapapi.Floor{}, err
	}
	return floor.Clone(), nil
}

// Floor returns the stored floor.
func (s *Server) Floor(id int64) (mapapi.Floor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	floor, ok := s.floors[id]
	if !ok {
		return mapapi.Floor{}, false
	}
	return floor.Clone(), true
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(started).Round(time.Microsecond),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request served")
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *fault
		if len(s.faults) > 0 {
			f = &s.faults[0]
			s.faults = s.faults[1:]
		}
		s.mu.Unlock()
		if f != nil {
			renderError(w, r, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) addMapLocked(name string) *mapRecord {
	s.nextMapID++
	rec := &mapRecord{id: s.nextMapID, name: name}
	s.maps[rec.id] = rec
	return rec
}

func (s *Server) addFloorLocked(dto mapapi.FloorDTO) (*mapapi.Floor, error) {
	rec, ok := s.maps[dto.MapID]
	if !ok {
		return nil, errMapNotFound
	}
	if strings.TrimSpace(dto.Name) == "" {
		return nil, errNameRequired
	}
	if dto.DimensionX <= 0 || dto.DimensionY <= 0 {
		return nil, errBadDimensions
	}
	s.nextFloorID++
	floor := &mapapi.Floor{
		ID:         s.nextFloorID,
		Name:       strings.TrimSpace(dto.Name),
		Number:     dto.Number,
		DimensionX: dto.DimensionX,
		DimensionY: dto.DimensionY,
		MapID:      dto.MapID,
	}
	floor.Cells = s.generateCellsLocked(floor.ID, dto.DimensionX, dto.DimensionY, nil)
	s.floors[floor.ID] = floor
	rec.floors = append(rec.floors, floor.ID)
	return floor, nil
}

// generateCellsLocked builds a full grid, carrying over filled state from
// previous cells that still fit.
func (s *Server) generateCellsLocked(floorID int64, dx, dy int, previous []mapapi.Cell) []mapapi.Cell {
	kept := make(map[[2]int]mapapi.Cell, len(previous))
	for _, c := range previous {
		kept[[2]int{c.X, c.Y}] = c
	}
	cells := make([]mapapi.Cell, 0, dx*dy)
	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			if old, ok := kept[[2]int{x, y}]; ok {
				cells = append(cells, old)
				continue
			}
			s.nextCellID++
			cells = append(cells, mapapi.Cell{ID: s.nextCellID, X: x, Y: y, FloorID: floorID})
		}
	}
	return cells
}

func (s *Server) mapViewLocked(rec *mapRecord) mapapi.Map {
	m := mapapi.Map{ID: rec.id, Name: rec.name, Floors: []mapapi.Floor{}, NumberOfFloors: len(rec.floors)}
	for _, id := range rec.floors {
		floor := s.floors[id]
		summary := *floor
		summary.Cells = nil
		m.Floors = append(m.Floors, summary)
	}
	sort.SliceStable(m.Floors, func(i, j int) bool { return m.Floors[i].Number < m.Floors[j].Number })
	return m
}
