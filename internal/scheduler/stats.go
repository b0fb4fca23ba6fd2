package scheduler

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// LoadStats summarizes booked minutes across the roster.
type LoadStats struct {
	MeanMin   float64
	StdDevMin float64
	MinMin    float64
	MaxMin    float64
	// Spread is MaxMin - MinMin, the quantity the least-loaded policy
	// keeps within one order's duration.
	Spread float64
}

func ComputeLoadStats(loads []Load) LoadStats {
	if len(loads) == 0 {
		return LoadStats{}
	}
	minutes := make([]float64, len(loads))
	for i, l := range loads {
		minutes[i] = float64(l.AssignedMin)
	}

	var s LoadStats
	if len(minutes) > 1 {
		s.MeanMin, s.StdDevMin = stat.MeanStdDev(minutes, nil)
	} else {
		s.MeanMin = minutes[0]
	}
	s.MinMin = floats.Min(minutes)
	s.MaxMin = floats.Max(minutes)
	s.Spread = s.MaxMin - s.MinMin
	return s
}
