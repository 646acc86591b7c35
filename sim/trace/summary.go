package trace

import "math"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Iterations         int
	TotalEngineSteps   int64
	PeakCoveredSites   int64
	LoadCount          int
	MeanForceMagnitude float64
	MaxForceMagnitude  float64
	MaxForceParticle   int64         // particle that saw MaxForceMagnitude; -1 if none
	LoadsPerParticle   map[int64]int // particle ID → number of recorded loads
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		MaxForceParticle: -1,
		LoadsPerParticle: make(map[int64]int),
	}
	if st == nil {
		return summary
	}

	summary.Iterations = len(st.Steps)
	for _, s := range st.Steps {
		if s.EngineSteps > summary.TotalEngineSteps {
			summary.TotalEngineSteps = s.EngineSteps
		}
		if s.CoveredSites > summary.PeakCoveredSites {
			summary.PeakCoveredSites = s.CoveredSites
		}
	}

	summary.LoadCount = len(st.Loads)
	if len(st.Loads) > 0 {
		total := 0.0
		for _, l := range st.Loads {
			summary.LoadsPerParticle[l.ParticleID]++
			mag := math.Sqrt(l.Force[0]*l.Force[0] + l.Force[1]*l.Force[1] + l.Force[2]*l.Force[2])
			total += mag
			if mag > summary.MaxForceMagnitude || summary.MaxForceParticle < 0 {
				summary.MaxForceMagnitude = mag
				summary.MaxForceParticle = l.ParticleID
			}
		}
		summary.MeanForceMagnitude = total / float64(len(st.Loads))
	}

	return summary
}
