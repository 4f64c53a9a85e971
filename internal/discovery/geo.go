package discovery

import "math"

// earthRadiusMeters is the mean Earth radius used for great-circle distances.
const earthRadiusMeters = 6371000.0

// HaversineMeters calculates the great-circle distance between two points in meters.
// The result keeps full float64 precision; rounding happens only when building
// output records, never before comparison or sorting.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Asin(math.Sqrt(a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// roundToInt rounds half away from zero. Used for presentation values
// (integer meters, integer discount percentage).
func roundToInt(v float64) int {
	return int(math.Round(v))
}
