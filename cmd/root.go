package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/splitserve/splitserve/offload"
)

var (
	// CLI flags for the controller
	seed               int64   // Seed for all randomized behavior (refresh gate, noise, delays)
	logLevel           string  // Log verbosity level
	configPath         string  // Controller config YAML (optional)
	windowSize         int     // Samples kept per layer per source
	varianceThreshold  float64 // CV bound above which a layer is judged unstable
	emaAlpha           float64 // Smoothing factor for the cost tables
	refreshEnabled     bool    // Enable the probabilistic full-local override
	refreshProbability float64 // Per-round probability of forcing a full-local round

	// CLI flags for the synthetic scenario
	scenarioPath     string  // Scenario YAML (optional)
	layers           int     // Layer count of the synthetic model
	rounds           int     // Number of simulated rounds
	deviceSlowdown   float64 // Device slowdown relative to the edge
	networkRate      float64 // Device-to-edge transfer rate (bytes/s)
	shiftRound       int     // Round at which device performance shifts (0 = never)
	shiftFactor      float64 // Device slowdown multiplier after the shift
	layerOutputBytes float64 // Per-layer output size crossing the boundary
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "splitserve",
	Short: "Adaptive split-point controller for device/edge split inference",
}

// simulateCmd drives the controller with a synthetic workload
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the controller against a synthetic split-inference workload",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := offload.DefaultConfig()
		if configPath != "" {
			cfg, err = offload.LoadConfig(configPath)
			if err != nil {
				logrus.Fatalf("Unable to load controller config: %v", err)
			}
		}
		applyConfigFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid controller config: %v", err)
		}

		scenario := offload.DefaultScenario()
		if scenarioPath != "" {
			scenario, err = offload.LoadScenario(scenarioPath)
			if err != nil {
				logrus.Fatalf("Unable to load scenario: %v", err)
			}
		}
		applyScenarioFlags(cmd, &scenario)
		if err := scenario.Validate(); err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}

		logrus.Infof("Starting run: model=%s layers=%d rounds=%d window=%d threshold=%.2f alpha=%.2f refresh=%v/%.2f",
			scenario.Model, scenario.Layers, scenario.Rounds,
			cfg.WindowSize, cfg.VarianceThreshold, cfg.EMAAlpha,
			cfg.Refresh.Enabled, cfg.Refresh.Probability)

		startTime := time.Now()

		sim, err := offload.NewSimulator(scenario, cfg, seed)
		if err != nil {
			logrus.Fatalf("Unable to build simulator: %v", err)
		}
		if err := sim.Run(); err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}

		sim.Metrics.Print()
		stats := sim.Coordinator().Stats()
		if stats.NeedsRetest {
			logrus.Infof("Layers still flagged at end of run: local=%v remote=%v",
				stats.Flagged.Local, stats.Flagged.Remote)
		}
		logrus.Infof("Rejected samples: %d", sim.Coordinator().RejectedSamples())
		logrus.Infof("Run complete in %v.", time.Since(startTime))
	},
}

// applyConfigFlags overrides file/default config with explicitly set flags.
func applyConfigFlags(cmd *cobra.Command, cfg *offload.Config) {
	if cmd.Flags().Changed("window-size") {
		cfg.WindowSize = windowSize
	}
	if cmd.Flags().Changed("variance-threshold") {
		cfg.VarianceThreshold = varianceThreshold
	}
	if cmd.Flags().Changed("ema-alpha") {
		cfg.EMAAlpha = emaAlpha
	}
	if cmd.Flags().Changed("refresh-enabled") {
		cfg.Refresh.Enabled = refreshEnabled
	}
	if cmd.Flags().Changed("refresh-probability") {
		cfg.Refresh.Probability = refreshProbability
	}
}

// applyScenarioFlags overrides file/default scenario with explicitly set flags.
func applyScenarioFlags(cmd *cobra.Command, sc *offload.Scenario) {
	if cmd.Flags().Changed("layers") {
		sc.Layers = layers
	}
	if cmd.Flags().Changed("rounds") {
		sc.Rounds = rounds
	}
	if cmd.Flags().Changed("device-slowdown") {
		sc.DeviceSlowdown = deviceSlowdown
	}
	if cmd.Flags().Changed("network-rate") {
		sc.NetworkRate = networkRate
	}
	if cmd.Flags().Changed("shift-round") {
		sc.ShiftRound = shiftRound
	}
	if cmd.Flags().Changed("shift-factor") {
		sc.ShiftFactor = shiftFactor
	}
	if cmd.Flags().Changed("layer-output-bytes") {
		sc.LayerOutputBytes = layerOutputBytes
	}
}

func init() {
	simulateCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for all randomized behavior")
	simulateCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	simulateCmd.Flags().StringVar(&configPath, "config", "", "Controller config YAML")
	simulateCmd.Flags().IntVar(&windowSize, "window-size", 10, "Samples kept per layer per source")
	simulateCmd.Flags().Float64Var(&varianceThreshold, "variance-threshold", 0.15, "CV bound above which a layer is unstable")
	simulateCmd.Flags().Float64Var(&emaAlpha, "ema-alpha", 0.2, "EMA smoothing factor for cost tables")
	simulateCmd.Flags().BoolVar(&refreshEnabled, "refresh-enabled", false, "Enable the probabilistic full-local override")
	simulateCmd.Flags().Float64Var(&refreshProbability, "refresh-probability", 0, "Per-round probability of forcing a full-local round")

	simulateCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML")
	simulateCmd.Flags().IntVar(&layers, "layers", 58, "Layer count of the synthetic model")
	simulateCmd.Flags().IntVar(&rounds, "rounds", 200, "Number of simulated rounds")
	simulateCmd.Flags().Float64Var(&deviceSlowdown, "device-slowdown", 10, "Device slowdown relative to the edge")
	simulateCmd.Flags().Float64Var(&networkRate, "network-rate", 1_000_000, "Device-to-edge transfer rate (bytes/s)")
	simulateCmd.Flags().IntVar(&shiftRound, "shift-round", 0, "Round at which device performance shifts (0 = never)")
	simulateCmd.Flags().Float64Var(&shiftFactor, "shift-factor", 1, "Device slowdown multiplier after the shift")
	simulateCmd.Flags().Float64Var(&layerOutputBytes, "layer-output-bytes", 64*1024, "Per-layer output size (bytes)")

	rootCmd.AddCommand(simulateCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
