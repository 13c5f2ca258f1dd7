package geo

import (
	"math"
	"sort"

	"github.com/lk2023060901/world-explorer/internal/country/types"
)

const earthRadiusKm = 6371.0

// DefaultNearbyLimit is how many neighboring capitals NearbyCapitals keeps
const DefaultNearbyLimit = 8

// DistanceKm is the great-circle (haversine) distance between two points.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Pow(math.Sin(dLng/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// NearbyCapital is a neighbor's capital and its distance from the origin
type NearbyCapital struct {
	Country    string  `json:"country"`
	CCA3       string  `json:"cca3,omitempty"`
	Capital    string  `json:"capital"`
	DistanceKm float64 `json:"distance_km"`
}

// NearbyCapitals orders the neighbors that have a capital and coordinates
// by distance from origin, closest first, and keeps at most limit of them.
func NearbyCapitals(origin *types.Country, neighbors []*types.Country, limit int) []NearbyCapital {
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}
	lat, lng, ok := origin.Coordinates()
	if !ok {
		return nil
	}

	out := make([]NearbyCapital, 0, len(neighbors))
	for _, n := range neighbors {
		capital := n.PrimaryCapital()
		if capital == "" {
			continue
		}
		nLat, nLng, ok := n.Coordinates()
		if !ok {
			continue
		}
		d := DistanceKm(lat, lng, nLat, nLng)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		out = append(out, NearbyCapital{
			Country:    n.DisplayName(),
			CCA3:       n.CCA3,
			Capital:    capital,
			DistanceKm: math.Round(d),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
