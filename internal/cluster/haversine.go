package cluster

import "math"

// Haversine returns the great-circle distance between two points given in
// radians. The result is the central angle in radians; multiply by the Earth
// radius to get a length. The clusterer works on angular distances directly
// so that its epsilon parameter matches the reference behavior.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	dLat := lat2 - lat1
	dLon := lon2 - lon1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
