package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"
	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim/dem"
	_ "github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim/dynamics"
	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim/output"
	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim/trace"
)

var (
	configPath    string  // YAML channel configuration
	resolution    int     // Lattice spacings across the channel height
	deltaP        float64 // Imposed pressure drop in Pa
	outDir        string  // Output root; lattice files go to tmp/, particle dumps to post/
	particlesPath string  // Particle engine setup file
	logLevel      string  // Log verbosity level
	workers       int     // Lattice partitions
	maxTime       float64 // Simulated physical time in seconds
	metricsAddr   string  // Prometheus listen address; empty disables
	traceLevel    string  // Coupling trace verbosity
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "lbdem",
	Short: "Lattice-Boltzmann channel flow coupled to a particle engine",
}

// resolveChannelConfig loads --config (or the defaults) and applies every
// flag the user set explicitly.
func resolveChannelConfig(cmd *cobra.Command) (ChannelConfig, error) {
	cfg := DefaultChannelConfig()
	if configPath != "" {
		var err error
		if cfg, err = LoadChannelConfig(configPath); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("n") {
		cfg.Resolution = resolution
	}
	if flags.Changed("delta-p") {
		cfg.DeltaP = deltaP
	}
	if flags.Changed("out") {
		cfg.Output.Dir = outDir
	}
	if flags.Changed("particles") {
		cfg.DEM.Config = particlesPath
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("max-time") {
		cfg.Times.Max = maxTime
	}
	return cfg, nil
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// logParameters reports the derived lattice parameters of a run.
func logParameters(log *logrus.Entry, s *RunSetup) {
	u := s.Units
	log.WithFields(logrus.Fields{
		"omega":     u.Omega(),
		"dt_phys":   u.Dt(),
		"u_phys":    u.Config().CharVelocity,
		"re":        u.Reynolds(),
		"delta_rho": s.DeltaRho,
		"grid":      fmt.Sprintf("%d %d %d", s.Lattice.Nx, s.Lattice.Ny, s.Lattice.Nz),
		"max_steps": s.Clock.MaxSteps,
		"snapshots": s.Clock.SnapshotEvery,
		"t_step":    s.DEMTimestep,
		"dmp_stp":   s.DumpSteps,
	}).Info("derived lattice parameters")
}

// runCmd executes the coupled simulation
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the coupled channel simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}

		cfg, err := resolveChannelConfig(cmd)
		if err != nil {
			logrus.Fatalf("unable to read channel config; %v", err)
		}
		setup, err := cfg.Derive()
		if err != nil {
			logrus.Fatalf("invalid configuration: %v", err)
		}

		rc := sim.NewRunContext(filepath.Join(cfg.Output.Dir, "tmp"))
		logParameters(rc.Log, setup)

		engine := dem.New(rc.Log)
		if err := setup.ConfigureEngine(engine, cfg.DEM.Config, filepath.Join(cfg.Output.Dir, "post")); err != nil {
			logrus.Fatalf("particle engine setup failed: %v", err)
		}

		lattice, err := sim.NewLattice(setup.Lattice)
		if err != nil {
			logrus.Fatalf("lattice setup failed: %v", err)
		}
		b := setup.Boundary
		lattice.InitializeEquilibrium(sim.PressureGradientProfile(b.RhoHi, b.RhoLo, setup.Lattice.Nx, b.Axis))
		boundary, err := sim.NewPeriodicPressureBoundary(lattice, b)
		if err != nil {
			logrus.Fatalf("pressure boundary setup failed: %v", err)
		}

		outputs := sim.Outputs{Snapshot: output.SnapshotCSV{}, Image: output.SliceCSV{}, Dump: output.DumpCSV{}}
		clock, err := sim.NewClock(setup.Clock, lattice, boundary, sim.NewCoupler(lattice, setup.Units), engine, outputs, rc)
		if err != nil {
			logrus.Fatalf("clock setup failed: %v", err)
		}

		var st *trace.SimulationTrace
		if traceLevel != "" && trace.TraceLevel(traceLevel) != trace.TraceLevelNone {
			st = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
			clock.SetTrace(st)
		}
		if metricsAddr != "" {
			srv := serveMetrics(metricsAddr, newRunRegistry(clock.Metrics(), rc.RunID))
			defer srv.Close()
		}

		if err := clock.Run(); err != nil {
			logrus.Fatalf("coupled run aborted: %v", err)
		}
		clock.Metrics().Print()
		if st != nil {
			printTraceSummary(trace.Summarize(st))
		}
		logrus.Info("Simulation complete.")
	},
}

func printTraceSummary(s *trace.TraceSummary) {
	fmt.Println("=== Coupling Trace ===")
	fmt.Printf("Traced Iterations    : %d\n", s.Iterations)
	fmt.Printf("Engine Substeps      : %d\n", s.TotalEngineSteps)
	fmt.Printf("Peak Covered Sites   : %d\n", s.PeakCoveredSites)
	if s.LoadCount > 0 {
		fmt.Printf("Mean Force Magnitude : %.4g N\n", s.MeanForceMagnitude)
		fmt.Printf("Max Force Magnitude  : %.4g N (particle %d)\n", s.MaxForceMagnitude, s.MaxForceParticle)
	}
}

// paramsCmd prints the lattice parameters a configuration resolves to
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print the derived lattice parameters without running",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		cfg, err := resolveChannelConfig(cmd)
		if err != nil {
			logrus.Fatalf("unable to read channel config; %v", err)
		}
		setup, err := cfg.Derive()
		if err != nil {
			logrus.Fatalf("invalid configuration: %v", err)
		}
		logParameters(logrus.NewEntry(logrus.StandardLogger()), setup)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, paramsCmd} {
		c.Flags().StringVar(&configPath, "config", "", "YAML channel configuration (defaults to the rectangular channel showcase)")
		c.Flags().IntVar(&resolution, "n", 20, "Lattice spacings across the channel height")
		c.Flags().Float64Var(&deltaP, "delta-p", 0.01, "Imposed pressure drop along the channel in Pa")
		c.Flags().StringVar(&outDir, "out", "out", "Output directory")
		c.Flags().StringVar(&particlesPath, "particles", "", "Particle engine setup file")
		c.Flags().IntVar(&workers, "workers", 0, "Lattice partitions (0 = GOMAXPROCS)")
		c.Flags().Float64Var(&maxTime, "max-time", 5000, "Simulated physical time in seconds")
		c.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	}
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Coupling trace level (none, steps, loads)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(paramsCmd)
}
