package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"
	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim/mocks"
)

func showcaseConfig() ChannelConfig {
	cfg := DefaultChannelConfig()
	cfg.DEM.Config = "in.lbdem.yaml"
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDerive_ShowcaseChannel(t *testing.T) {
	// GIVEN the default rectangular channel
	cfg := showcaseConfig()

	// WHEN converted to lattice units
	s, err := cfg.Derive()
	require.NoError(t, err)

	// THEN u = 0.004 m/s, dx = 0.01 m and dt = 0.05 s
	assert.InDelta(t, 0.004, s.Units.Config().CharVelocity, 1e-15)
	assert.InDelta(t, 0.05, s.Units.Dt(), 1e-15)
	assert.InDelta(t, 0.5, s.Lattice.Omega, 1e-12)
	assert.Equal(t, 80, s.Lattice.Nx)
	assert.Equal(t, 20, s.Lattice.Ny)
	assert.Equal(t, 20, s.Lattice.Nz)
	assert.Equal(t, [3]bool{true, false, false}, s.Lattice.Periodic)
	assert.Equal(t, sim.DynamicsImmersedBGK, s.Lattice.Dynamics)

	// AND the density drop follows p = cs²ρ
	assert.InDelta(t, 7.5e-4, s.DeltaRho, 1e-15)
	assert.Equal(t, 1.0, s.Boundary.RhoHi)
	assert.InDelta(t, 1-7.5e-4, s.Boundary.RhoLo, 1e-15)
	assert.Equal(t, sim.NewBox(0, 0, 0, 19, 0, 19), s.Boundary.Inlet)
	assert.Equal(t, sim.NewBox(79, 79, 0, 19, 0, 19), s.Boundary.Outlet)

	// AND cadences and engine settings are in steps
	assert.Equal(t, int64(100000), s.Clock.MaxSteps)
	assert.Equal(t, int64(20), s.Clock.SnapshotEvery)
	assert.Equal(t, int64(2000), s.Clock.ImageEvery)
	assert.Equal(t, int64(1), s.Clock.LogEvery, "sub-step log interval clamps to 1")
	assert.Equal(t, int64(0), s.Clock.DumpEvery, "zero interval disables dumps")
	assert.Equal(t, 10, s.Clock.DEMSubsteps)
	assert.InDelta(t, 0.005, s.DEMTimestep, 1e-15)
	assert.Equal(t, 200, s.DumpSteps)
}

func TestDerive_DuctRun_PhysicalCentrelineMatchesPoiseuille(t *testing.T) {
	if testing.Short() {
		t.Skip("long relaxation run")
	}
	// GIVEN a 0.4x0.2x0.2 m duct whose units give tau = 1 and a density drop of 0.01
	cfg := showcaseConfig()
	cfg.Channel = ChannelGeometry{Lx: 0.4, Ly: 0.2, Lz: 0.2}
	cfg.CharVelocity = 0.012
	cfg.DeltaP = 1.2
	cfg.Dynamics = sim.DynamicsBGK
	cfg.Workers = 4
	s, err := cfg.Derive()
	require.NoError(t, err)
	require.InDelta(t, 0.01, s.DeltaRho, 1e-12)
	require.InDelta(t, 1.0, s.Lattice.Omega, 1e-12)

	// WHEN the lattice relaxes under the derived pressure boundary
	l, err := sim.NewLattice(s.Lattice)
	require.NoError(t, err)
	l.InitializeEquilibrium(sim.PressureGradientProfile(s.Boundary.RhoHi, s.Boundary.RhoLo, s.Lattice.Nx, 0))
	b, err := sim.NewPeriodicPressureBoundary(l, s.Boundary)
	require.NoError(t, err)
	for i := 0; i < 2000; i++ {
		require.NoError(t, b.PreColl(l))
		require.NoError(t, l.CollideAndStream())
		require.NoError(t, b.PostColl(l))
	}

	// THEN the near-centre velocity in m/s matches the duct solution for the
	// physical gradient delta_p over the distance between the pinned planes
	nx, ny, nz := l.Dims()
	u, err := l.Velocity(sim.NewBox(nx/2, nx/2, 10, 10, 10, 10))
	require.NoError(t, err)
	got := s.Units.ToPhysVelocity(u[0][0])

	dx := s.Units.Dx()
	g := cfg.DeltaP / (float64(nx-1) * dx)
	mu := cfg.Fluid.Density * cfg.Fluid.Viscosity
	// DuctVelocity takes lengths in cells; dx² restores metres
	want := sim.DuctVelocity(g, mu, ny, nz, 10, 10) * dx * dx
	assert.InEpsilon(t, want, got, 0.05)
	assert.InDelta(t, 0.009, got, 5e-4)
}

func TestDerive_ExplicitCharVelocity(t *testing.T) {
	cfg := showcaseConfig()
	cfg.CharVelocity = 0.02

	s, err := cfg.Derive()
	require.NoError(t, err)

	assert.InDelta(t, 0.01, s.Units.Dt(), 1e-15)
}

func TestDerive_Rejects(t *testing.T) {
	tests := map[string]func(c *ChannelConfig){
		"no particle file":     func(c *ChannelConfig) { c.DEM.Config = "" },
		"zero resolution":      func(c *ChannelConfig) { c.Resolution = 0 },
		"negative delta_p":     func(c *ChannelConfig) { c.DeltaP = -1 },
		"no drive":             func(c *ChannelConfig) { c.DeltaP = 0 },
		"zero substeps":        func(c *ChannelConfig) { c.DEM.Substeps = 0 },
		"negative interval":    func(c *ChannelConfig) { c.Times.Image = -1 },
		"zero viscosity":       func(c *ChannelConfig) { c.Fluid.Viscosity = 0 },
		"short channel":        func(c *ChannelConfig) { c.Channel.Lx = 0.01 },
		"unknown dump field":   func(c *ChannelConfig) { c.Output.DumpFields = []string{"vorticity"} },
		"bad population index": func(c *ChannelConfig) { c.Output.DumpPopulations = []int{19} },
		"negative outlet":      func(c *ChannelConfig) { c.DeltaP = 1e-6 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := showcaseConfig()
			mutate(&cfg)
			_, err := cfg.Derive()
			require.Error(t, err)
			assert.True(t, errors.Is(err, sim.ErrConfiguration), "got %v", err)
		})
	}
}

func TestLoadChannelConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
resolution: 32
delta_p: 0.02
dem:
  config: particles.yaml
output:
  dump_fields: [solid_fraction]
`)

	cfg, err := LoadChannelConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Resolution)
	assert.Equal(t, 0.02, cfg.DeltaP)
	assert.Equal(t, "particles.yaml", cfg.DEM.Config)
	assert.Equal(t, 10, cfg.DEM.Substeps, "unset keys keep their defaults")
	assert.Equal(t, []string{"solid_fraction"}, cfg.Output.DumpFields)
}

func TestLoadChannelConfig_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "resolutoin: 32\n")

	_, err := LoadChannelConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolutoin")
}

func TestLoadChannelConfig_MissingFile(t *testing.T) {
	_, err := LoadChannelConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfigureEngine_SetsCouplingVariables(t *testing.T) {
	// GIVEN the derived showcase setup
	s, err := showcaseConfig().Derive()
	require.NoError(t, err)
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockParticleEngine(ctrl)

	// THEN the engine is loaded and then told its timestep, dump cadence and directory
	gomock.InOrder(
		engine.EXPECT().LoadConfiguration("in.lbdem.yaml").Return(nil),
		engine.EXPECT().SetVariable(sim.EngineVarTimestep, s.DEMTimestep).Return(nil),
		engine.EXPECT().SetVariable(sim.EngineVarDumpSteps, 200).Return(nil),
		engine.EXPECT().SetVariable(sim.EngineVarDumpDir, "out/post").Return(nil),
	)

	// WHEN the engine is configured
	require.NoError(t, s.ConfigureEngine(engine, "in.lbdem.yaml", "out/post"))
}

func TestConfigureEngine_Failures(t *testing.T) {
	s, err := showcaseConfig().Derive()
	require.NoError(t, err)

	t.Run("load", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		engine := mocks.NewMockParticleEngine(ctrl)
		engine.EXPECT().LoadConfiguration(gomock.Any()).Return(fmt.Errorf("%w: bad file", sim.ErrConfiguration))

		err := s.ConfigureEngine(engine, "x", "y")

		assert.True(t, errors.Is(err, sim.ErrConfiguration))
	})
	t.Run("variable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		engine := mocks.NewMockParticleEngine(ctrl)
		engine.EXPECT().LoadConfiguration(gomock.Any()).Return(nil)
		engine.EXPECT().SetVariable(sim.EngineVarTimestep, gomock.Any()).Return(fmt.Errorf("rejected"))

		err := s.ConfigureEngine(engine, "x", "y")

		assert.True(t, errors.Is(err, sim.ErrConfiguration))
		assert.Contains(t, err.Error(), sim.EngineVarTimestep)
	})
}
