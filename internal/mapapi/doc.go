// Package mapapi provides a typed client for the map/floor/cell HTTP API.
//
// # Overview
//
// The package defines the wire contracts (types.go) and one Client method per
// remote action (client.go), layered on a transport.Transport.
//
// # API Endpoints
//
//   - GET    /api/map                   ListMaps
//   - GET    /api/map/{id}              GetMap
//   - POST   /api/map?name=             CreateMap
//   - PUT    /api/map/UpdateMap/{id}    EditMap (204)
//   - DELETE /api/map/{id}              DeleteMap (204)
//   - GET    /api/floor/{floorId}       GetFloor
//   - POST   /api/floor                 CreateFloor
//   - PUT    /api/floor/{floorId}       EditFloor (204)
//   - DELETE /api/floor/{floorId}       DeleteFloor (204)
//   - POST   /api/cell/update           UpdateCells (204)
//
// The map rename route does not follow the RESTful shape of the floor routes.
// The client uses the routes as the server exposes them.
//
// # Validation
//
// Every method that takes an identifier, a name, or a payload checks it
// before touching the network and returns a *ValidationError when it is
// missing or empty. Identifiers must be positive. Names are trimmed before
// they are sent. errors.Is(err, ErrValidation) matches all of them.
//
// # Error Handling
//
// Failures from the transport are returned unchanged, so callers can tell
// the three kinds apart:
//
//	var verr *mapapi.ValidationError
//	var remote *transport.RemoteError
//	var netErr *transport.Error
//	switch {
//	case errors.As(err, &verr):
//	case errors.As(err, &remote):
//		// remote.Status, remote.Message
//	case errors.As(err, &netErr):
//		// netErr.Timeout()
//	}
//
// # Testing Considerations
//
// Service and FloorService are satisfied by *Client. Use httptest.Server or
// the fakeapi package to stand in for the backend.
package mapapi
