package dem

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"
	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim/internal/testutil"
)

// unitMassSetup gives each sphere of radius 0.1 a mass of 1 kg.
const unitMassSetup = `
domain:
  min: [0, 0, 0]
  max: [1, 1, 1]
  periodic: [true, false, false]
density: 238.73241463784300365
particles:
  - id: 4
    position: [0.5, 0.5, 0.5]
    radius: 0.1
  - id: 9
    position: [0.2, 0.5, 0.5]
    velocity: [0, 0.1, 0]
    radius: 0.1
`

func loadedEngine(t *testing.T, setup string) *Engine {
	t.Helper()
	e := New(nil)
	require.NoError(t, e.LoadConfiguration(testutil.WriteFile(t, "particles.yaml", setup)))
	require.NoError(t, e.SetVariable(sim.EngineVarTimestep, 0.01))
	return e
}

func TestEngine_Pull_ConfigurationOrder(t *testing.T) {
	e := loadedEngine(t, unitMassSetup)

	ps, err := e.Pull()

	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, int64(4), ps[0].ID)
	assert.Equal(t, int64(9), ps[1].ID)
	assert.Equal(t, sim.Vec3{0, 0.1, 0}, ps[1].Velocity)
	assert.Equal(t, 0.1, ps[0].Radius)
}

func TestEngine_PushAdvance_IntegratesLoad(t *testing.T) {
	// GIVEN a unit-mass sphere at rest under a constant 2 N force
	e := loadedEngine(t, unitMassSetup)
	require.NoError(t, e.Push(4, sim.Vec3{2, 0, 0}, sim.Vec3{}))

	// WHEN ten steps of 0.01 s are taken
	require.NoError(t, e.Advance(10))

	// THEN semi-implicit Euler gives v = 0.2 and Δx = dt²·F·(1+…+10)
	ps, _ := e.Pull()
	assert.InDelta(t, 0.2, ps[0].Velocity[0], 1e-12)
	assert.InDelta(t, 0.511, ps[0].Position[0], 1e-12)
	assert.Equal(t, int64(10), e.Steps())
	// AND the unloaded sphere keeps moving freely
	assert.InDelta(t, 0.51, ps[1].Position[1], 1e-12)
}

func TestEngine_Advance_TorqueSpinsSphere(t *testing.T) {
	e := loadedEngine(t, unitMassSetup)
	// I = 0.4·m·r² = 0.004
	require.NoError(t, e.Push(4, sim.Vec3{}, sim.Vec3{0, 0, 0.004}))

	require.NoError(t, e.Advance(5))

	ps, _ := e.Pull()
	assert.InDelta(t, 0.05, ps[0].AngularVelocity[2], 1e-12)
}

func TestEngine_Advance_PeriodicWrapAndWallReflection(t *testing.T) {
	setup := `
domain:
  min: [0, 0, 0]
  max: [1, 1, 1]
  periodic: [true, false, false]
density: 1000
particles:
  - id: 1
    position: [0.99, 0.99, 0.5]
    velocity: [2, 2, 0]
    radius: 0.01
`
	e := loadedEngine(t, setup)

	require.NoError(t, e.Advance(1))

	ps, _ := e.Pull()
	assert.InDelta(t, 0.01, ps[0].Position[0], 1e-12, "wrapped across periodic x")
	assert.InDelta(t, 0.99, ps[0].Position[1], 1e-12, "reflected off the y wall")
	assert.InDelta(t, -2, ps[0].Velocity[1], 1e-12)
	assert.InDelta(t, 2, ps[0].Velocity[0], 1e-12)
}

func TestEngine_Advance_Gravity(t *testing.T) {
	setup := `
domain: {min: [0, 0, 0], max: [1, 1, 1]}
density: 1000
gravity: [0, 0, -10]
particles:
  - {id: 1, position: [0.5, 0.5, 0.5], radius: 0.01}
`
	e := loadedEngine(t, setup)

	require.NoError(t, e.Advance(3))

	ps, _ := e.Pull()
	assert.InDelta(t, -0.3, ps[0].Velocity[2], 1e-12)
}

func TestEngine_Advance_WritesDumps(t *testing.T) {
	// GIVEN dumps every 2 steps
	e := loadedEngine(t, unitMassSetup)
	dir := filepath.Join(t.TempDir(), "post")
	require.NoError(t, e.SetVariable(sim.EngineVarDumpDir, dir))
	require.NoError(t, e.SetVariable(sim.EngineVarDumpSteps, 2))

	// WHEN five steps are taken
	require.NoError(t, e.Advance(5))

	// THEN steps 2 and 4 were dumped
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, de := range entries {
		names = append(names, de.Name())
	}
	assert.Equal(t, []string{"particles_000000002.csv", "particles_000000004.csv"}, names)
	data, err := os.ReadFile(filepath.Join(dir, "particles_000000004.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(dumpColumns, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "4,"))
}

func TestEngine_SetVariable_Validation(t *testing.T) {
	e := New(nil)

	assert.Error(t, e.SetVariable(sim.EngineVarTimestep, 0.0))
	assert.Error(t, e.SetVariable(sim.EngineVarTimestep, 1), "int is not a timestep")
	assert.Error(t, e.SetVariable(sim.EngineVarDumpSteps, -1))
	assert.Error(t, e.SetVariable(sim.EngineVarDumpSteps, "10"))
	assert.NoError(t, e.SetVariable(sim.EngineVarDumpSteps, int64(10)))
	assert.Error(t, e.SetVariable(sim.EngineVarDumpDir, ""))
	assert.Error(t, e.SetVariable("neigh_modify", 1))
}

func TestEngine_Errors(t *testing.T) {
	e := New(nil)
	_, err := e.Pull()
	assert.Error(t, err, "pull before load")
	assert.Error(t, e.Advance(1), "advance before load")

	e = loadedEngine(t, unitMassSetup)
	assert.Error(t, e.Push(77, sim.Vec3{}, sim.Vec3{}), "unknown id")
	assert.Error(t, e.Push(4, sim.Vec3{1, 0, 0}, sim.Vec3{0, 0, math.Inf(1)}), "non-finite torque")
	assert.Error(t, e.Advance(-1))
}

func TestEngine_LoadConfiguration_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":  "domain: {min: [0,0,0], max: [1,1,1]}\ndensty: 1000\n",
		"empty domain": "domain: {min: [0,0,0], max: [1,0,1]}\n",
		"duplicate id": `
domain: {min: [0,0,0], max: [1,1,1]}
density: 1000
particles:
  - {id: 1, position: [0.5,0.5,0.5], radius: 0.1}
  - {id: 1, position: [0.2,0.5,0.5], radius: 0.1}
`,
		"outside": `
domain: {min: [0,0,0], max: [1,1,1]}
density: 1000
particles:
  - {id: 1, position: [1.5,0.5,0.5], radius: 0.1}
`,
		"no radius": `
domain: {min: [0,0,0], max: [1,1,1]}
density: 1000
particles:
  - {id: 1, position: [0.5,0.5,0.5]}
`,
		"no density": `
domain: {min: [0,0,0], max: [1,1,1]}
particles:
  - {id: 1, position: [0.5,0.5,0.5], radius: 0.1}
`,
	}
	for name, setup := range tests {
		t.Run(name, func(t *testing.T) {
			err := New(nil).LoadConfiguration(testutil.WriteFile(t, "p.yaml", setup))
			require.Error(t, err)
			assert.True(t, errors.Is(err, sim.ErrConfiguration))
		})
	}
	err := New(nil).LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, sim.ErrConfiguration))
}
