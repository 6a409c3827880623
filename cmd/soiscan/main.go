package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	madness "github.com/Space-Marine-NASA-Hackathon-25/Madness"
	kitlog "github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "soiscan",
	Short: "Earth SOI crossings and closest approach of a small body",
	Long:  "soiscan finds when a small body on a heliocentric orbit enters Earth's sphere of influence, how close it gets and when it leaves.",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario file",
	RunE:  runScenario,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "directory of conf.toml (default $"+madness.ConfigEnv+")")
	runCmd.Flags().StringP("scenario", "s", "", "scenario TOML file")
	runCmd.Flags().Bool("metrics", false, "log the scan counters when done")
	runCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadViper reads conf.toml (if any) then merges the scenario on top of it.
func loadViper(confDir, scenarioPath string) (*viper.Viper, error) {
	if confDir == "" {
		confDir = os.Getenv(madness.ConfigEnv)
	}
	v := madness.NewViper()
	if confDir != "" {
		v.SetConfigFile(filepath.Join(confDir, "conf.toml"))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%s/conf.toml: %w", confDir, err)
		}
	}
	if !strings.HasSuffix(scenarioPath, ".toml") {
		scenarioPath += ".toml"
	}
	v.SetConfigFile(scenarioPath)
	if err := v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("%s: %w", scenarioPath, err)
	}
	return v, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	confDir, _ := cmd.Flags().GetString("config")
	scenarioPath, _ := cmd.Flags().GetString("scenario")
	withMetrics, _ := cmd.Flags().GetBool("metrics")

	v, err := loadViper(confDir, scenarioPath)
	if err != nil {
		return err
	}
	cfg, err := madness.ConfigFromViper(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	scenario, err := readScenario(v)
	if err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "pha", scenario.Name)
	logger.Log("level", "info", "subsys", "conf", "scenario", scenario, "soi(km)", cfg.Constants.SOIRadius, "vsop87", cfg.VSOP87)

	reg := prometheus.NewRegistry()
	metrics, err := madness.NewMetrics(reg)
	if err != nil {
		return err
	}
	calc := madness.NewCalculator(cfg, madness.NewEphemeris(cfg), logger, metrics)
	rslt, err := calc.CalculateCrossings(scenario.Orbit, scenario.Start)
	if withMetrics {
		logMetrics(logger, reg)
	}
	if err != nil {
		return err
	}

	ld := cfg.Constants.LunarDistance
	for _, c := range rslt.Crossings {
		fmt.Printf("%-9s %s  %.3f LD\n", c.Direction, c.Time.ISO(3), c.Distance/ld)
	}
	fmt.Printf("%-9s %s  %.1f km (%.3f LD)\n", "closest", rslt.ApproachTime().ISO(3), rslt.ApproachDistance(), rslt.ApproachDistance()/ld)
	if !rslt.Approach.Fitted() {
		fmt.Println("[warning] closest approach is the best scan sample, not a fitted minimum")
	}
	return nil
}

func logMetrics(logger kitlog.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logger.Log("level", "error", "subsys", "metrics", "err", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			kv := []interface{}{"level", "info", "subsys", "metrics", "name", mf.GetName()}
			for _, l := range m.GetLabel() {
				kv = append(kv, l.GetName(), l.GetValue())
			}
			kv = append(kv, "value", m.GetCounter().GetValue())
			logger.Log(kv...)
		}
	}
}
