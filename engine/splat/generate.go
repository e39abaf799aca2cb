package splat

import "math"

// FibonacciSphere returns n splats evenly spread over a sphere of the given radius, colored
// by their direction. Used for demo scenes and fixtures.
//
// Parameters:
//   - n: number of splats
//   - radius: sphere radius
//
// Returns:
//   - []Record: the generated records
func FibonacciSphere(n int, radius float64) []Record {
	records := make([]Record, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	logScale := math.Log(radius * 2 / math.Sqrt(float64(max(n, 1))))
	for i := range records {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		ring := math.Sqrt(1 - y*y)
		theta := golden * float64(i)
		dir := [3]float64{math.Cos(theta) * ring, y, math.Sin(theta) * ring}
		records[i] = Record{
			Position: [3]float64{dir[0] * radius, dir[1] * radius, dir[2] * radius},
			Rotation: [4]float64{0, 0, 0, 1},
			LogScale: [3]float64{logScale, logScale, logScale - 2},
			SHDC:     [3]float64{dir[0] / SHC0 / 2, dir[1] / SHC0 / 2, dir[2] / SHC0 / 2},
			Opacity:  2,
		}
	}
	return records
}
