package solver

import (
	"fmt"
	"math"
)

// TransportCost supplies travel cost and distance between locations. Cost may
// be asymmetric and may depend on the departure time; Distance backs the
// proximity index and is profile-specific.
type TransportCost interface {
	Cost(actor *Actor, from, to Location, departureSec float64) float64
	Distance(profile int, from, to Location) float64
}

// MatrixTransport serves costs from per-profile square matrices, row-major.
type MatrixTransport struct {
	size      int
	distances map[int][]float64
}

// NewMatrixTransport validates and wraps per-profile distance matrices.
func NewMatrixTransport(size int, distances map[int][]float64) (*MatrixTransport, error) {
	if size <= 0 {
		return nil, fmt.Errorf("matrix size must be positive, got %d", size)
	}
	for profile, m := range distances {
		if len(m) != size*size {
			return nil, fmt.Errorf("profile %d matrix has %d entries, want %d", profile, len(m), size*size)
		}
	}
	return &MatrixTransport{size: size, distances: distances}, nil
}

func (t *MatrixTransport) Cost(actor *Actor, from, to Location, _ float64) float64 {
	return t.Distance(actor.Vehicle.Profile, from, to)
}

func (t *MatrixTransport) Distance(profile int, from, to Location) float64 {
	m, ok := t.distances[profile]
	if !ok {
		return 0
	}
	return m[from*t.size+to]
}

// GeoTransport derives costs from haversine distance over a coordinate table.
// All profiles share the same geometry.
type GeoTransport struct {
	coords [][2]float64 // lat, lng per location
}

// NewGeoTransport wraps a coordinate table indexed by Location.
func NewGeoTransport(coords [][2]float64) *GeoTransport {
	return &GeoTransport{coords: coords}
}

func (t *GeoTransport) Cost(actor *Actor, from, to Location, _ float64) float64 {
	return t.Distance(actor.Vehicle.Profile, from, to)
}

func (t *GeoTransport) Distance(_ int, from, to Location) float64 {
	a := t.coords[from]
	b := t.coords[to]
	return haversine(a[0], a[1], b[0], b[1])
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return R * c
}
