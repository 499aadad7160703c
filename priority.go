package jobpool

import (
	"strconv"
)

// Priority orders jobs in the work queue. Lower values run sooner.
//
// Any finite value is accepted; the named bands are conventions
// shared by producers.
type Priority float64

const (
	Highest Priority = 0
	High    Priority = 25
	Normal  Priority = 50
	Low     Priority = 75
	Lowest  Priority = 100
)

func (p Priority) String() string {
	switch p {
	case Highest:
		return "Highest"
	case High:
		return "High"
	case Normal:
		return "Normal"
	case Low:
		return "Low"
	case Lowest:
		return "Lowest"
	default:
		return strconv.FormatFloat(float64(p), 'g', -1, 64)
	}
}
