package physics

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// Constants
const (
	MetersToFeet     = 3.28084     // Altitude readout conversion
	FeetToMeters     = 0.3048      // Conversion factor from feet to metres
	KnotsToMilesPerS = 0.000319661 // Knots to statute miles per second
	EarthRadiusNM    = 3440.065    // 6371 km / 1.852 km/nm
	DegreesPerCircle = 360.0
)

// ------------------------------------------------------------------------------------------------
// HEADINGS
// ------------------------------------------------------------------------------------------------

// NormalizeHeading wraps a heading into [0, 360)
func NormalizeHeading(deg float64) float64 {
	return math.Mod(math.Mod(deg, DegreesPerCircle)+DegreesPerCircle, DegreesPerCircle)
}

// CalculateMagneticVariation calculates the magnetic declination for a given position and time
// Returns declination in degrees (+East, -West)
func CalculateMagneticVariation(lat, lon, altFt float64, date time.Time) float64 {
	// Convert altitude to meters for WMM
	altM := altFt * FeetToMeters

	// Create location from Geodetic coordinates
	loc := egm96.NewLocationGeodetic(lat, lon, altM)

	// Calculate magnetic field
	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		// Return 0 for safety if calculation fails
		return 0.0
	}

	return mag.D() // Declination
}

// TrueToMagnetic converts a true heading to magnetic given the declination (+East)
func TrueToMagnetic(trueHeading, declination float64) float64 {
	return NormalizeHeading(trueHeading - declination)
}

// ------------------------------------------------------------------------------------------------
// NAVIGATION
// ------------------------------------------------------------------------------------------------

// Bearing calculates the initial bearing from point 1 to point 2
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert to radians
	lat1 = lat1 * math.Pi / 180
	lon1 = lon1 * math.Pi / 180
	lat2 = lat2 * math.Pi / 180
	lon2 = lon2 * math.Pi / 180

	y := math.Sin(lon2-lon1) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	bearing := math.Atan2(y, x) * 180 / math.Pi

	return NormalizeHeading(bearing)
}

// DistanceNM returns the great-circle distance between two points in nautical miles
func DistanceNM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return EarthRadiusNM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DestinationPoint calculates a destination point given a starting point, bearing, and distance
func DestinationPoint(lat, lon, bearing, distanceNM float64) (float64, float64) {
	lat = lat * math.Pi / 180
	lon = lon * math.Pi / 180
	bearing = bearing * math.Pi / 180

	distRatio := distanceNM / EarthRadiusNM
	lat2 := math.Asin(math.Sin(lat)*math.Cos(distRatio) + math.Cos(lat)*math.Sin(distRatio)*math.Cos(bearing))
	lon2 := lon + math.Atan2(
		math.Sin(bearing)*math.Sin(distRatio)*math.Cos(lat),
		math.Cos(distRatio)-math.Sin(lat)*math.Sin(lat2),
	)

	// Convert back to degrees, longitude into [-180, 180)
	lat2 = lat2 * 180 / math.Pi
	lon2 = math.Mod(lon2*180/math.Pi+540, 360) - 180

	return lat2, lon2
}

// MilesTravelled returns statute miles covered at a ground speed for the given interval
func MilesTravelled(speedKnots float64, elapsed time.Duration) float64 {
	return speedKnots * KnotsToMilesPerS * elapsed.Seconds()
}
