package trace

// TraceLevel controls the verbosity of coupling traces.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures one StepRecord per iteration.
	TraceLevelSteps TraceLevel = "steps"
	// TraceLevelLoads additionally captures every pushed particle load.
	TraceLevelLoads TraceLevel = "loads"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	TraceLevelLoads: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects coupling records during a run.
type SimulationTrace struct {
	Config TraceConfig
	Steps  []StepRecord
	Loads  []LoadRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Steps:  make([]StepRecord, 0),
		Loads:  make([]LoadRecord, 0),
	}
}

// RecordStep appends a step record unless tracing is disabled.
func (st *SimulationTrace) RecordStep(record StepRecord) {
	if st.Config.Level != TraceLevelSteps && st.Config.Level != TraceLevelLoads {
		return
	}
	st.Steps = append(st.Steps, record)
}

// RecordLoad appends a load record at TraceLevelLoads.
func (st *SimulationTrace) RecordLoad(record LoadRecord) {
	if st.Config.Level != TraceLevelLoads {
		return
	}
	st.Loads = append(st.Loads, record)
}
