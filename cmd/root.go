// cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/pipeline"
	"github.com/popupsim/popupsim/internal/report"
	"github.com/popupsim/popupsim/internal/scenario"
)

var (
	scenarioPath string
	outputPath   string
	logLevel     string
	noCharts     bool
	seedOverride int64
)

var rootCmd = &cobra.Command{
	Use:   "popupsim",
	Short: "Discrete-event simulator for a Pop-Up DAC retrofit workshop",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario end to end and write its report",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		runID, err := uuid.NewV4()
		if err != nil {
			logrus.Fatalf("generating run id: %v", err)
		}
		logrus.Infof("run %s: loading scenario from %s", runID, scenarioPath)

		scn, trackOrder, workshopOrder, err := scenario.Load(scenarioPath)
		if err != nil {
			logrus.Errorf("scenario load failed: %v", err)
			os.Exit(2)
		}
		if cmd.Flags().Changed("seed") {
			scn.Seed = seedOverride
		}

		result := scenario.Validate(scn, trackOrder)
		for _, w := range result.Warnings {
			logrus.Warnf("%s: %s (%s)", w.FieldPath, w.Message, w.Suggestion)
		}
		if result.HasErrors() {
			for _, e := range result.Errors {
				logrus.Errorf("%s: %s (%s)", e.FieldPath, e.Message, e.Suggestion)
			}
			os.Exit(1)
		}

		sim := pipeline.New(scn, trackOrder, workshopOrder)
		runSimulation(sim)

		if err := writeReport(sim, trackOrder, workshopOrder); err != nil {
			logrus.Errorf("writing report: %v", err)
			os.Exit(2)
		}
		logrus.Infof("run %s complete: %d wagons processed", runID, len(sim.Wagons()))
	},
}

// runSimulation advances the kernel to completion, converting a runtime
// invariant-violation panic into a diagnostic log line and exit
// code 3 instead of an unhandled crash.
func runSimulation(sim *pipeline.Simulation) {
	defer func() {
		if r := recover(); r != nil {
			lastEvent := "none"
			if events := sim.Metrics.Events(); len(events) > 0 {
				e := events[len(events)-1]
				lastEvent = fmt.Sprintf("%s %s %s at t=%g", e.Category, e.Kind, e.Subject, e.Time)
			}
			logrus.Errorf("runtime invariant violation at t=%g: %v (last event: %s)", sim.Kernel.Now(), r, lastEvent)
			os.Exit(3)
		}
	}()
	sim.Run()
}

// writeReport assembles every report artifact under outputPath.
func writeReport(sim *pipeline.Simulation, trackOrder domain.TrackOrder, workshopOrder []domain.WorkshopID) error {
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	wagons := sim.Wagons()
	sort.Slice(wagons, func(i, j int) bool { return wagons[i].ID < wagons[j].ID })

	summary := report.BuildSummary(sim.Scenario, wagons)
	trackMetrics := report.CollectTrackMetrics(sim, trackOrder)
	workshopMetrics := report.CollectWorkshopMetrics(sim, workshopOrder)
	locoMetrics := report.CollectLocomotiveMetrics(sim)
	bottlenecks := report.DetectBottlenecks(sim, trackOrder, workshopOrder)

	if err := report.WriteSummary(filepath.Join(outputPath, "summary.csv"), summary); err != nil {
		return err
	}
	if err := report.WriteTrackMetrics(filepath.Join(outputPath, "track_metrics.csv"), trackMetrics); err != nil {
		return err
	}
	if err := report.WriteWorkshopMetrics(filepath.Join(outputPath, "workshop_metrics.csv"), workshopMetrics); err != nil {
		return err
	}
	if err := report.WriteLocomotiveMetrics(filepath.Join(outputPath, "locomotive_metrics.csv"), locoMetrics); err != nil {
		return err
	}
	if err := report.WriteBottlenecks(filepath.Join(outputPath, "bottlenecks.csv"), bottlenecks); err != nil {
		return err
	}

	if err := report.WriteEvents(filepath.Join(outputPath, "wagon_events.csv"), sim.Metrics.ByCategory(domain.CategoryWagon)); err != nil {
		return err
	}
	if err := report.WriteEvents(filepath.Join(outputPath, "locomotive_events.csv"), sim.Metrics.ByCategory(domain.CategoryLocomotive)); err != nil {
		return err
	}
	if err := report.WriteEvents(filepath.Join(outputPath, "workshop_events.csv"), sim.Metrics.ByCategory(domain.CategoryWorkshop)); err != nil {
		return err
	}
	if err := report.WriteEvents(filepath.Join(outputPath, "track_events.csv"), sim.Metrics.ByCategory(domain.CategoryTrack)); err != nil {
		return err
	}

	if noCharts {
		return nil
	}
	return writeCharts(outputPath, trackMetrics, workshopMetrics, locoMetrics, wagons)
}

// writeCharts renders the optional SVG outputs: track, workshop, and
// locomotive utilisation bar charts, plus a cumulative-throughput-over-time
// line chart and a waiting-time-distribution bar chart. SVG stays the
// in-repo renderer's output format (chart.go documents why: no charting
// library appears anywhere in the example pack to produce PNGs from).
func writeCharts(
	outputPath string,
	trackMetrics []report.TrackMetric,
	workshopMetrics []report.WorkshopMetric,
	locoMetrics []report.LocomotiveMetric,
	wagons []*domain.Wagon,
) error {
	chartsDir := filepath.Join(outputPath, "charts")
	if err := os.MkdirAll(chartsDir, 0o755); err != nil {
		return fmt.Errorf("creating charts dir: %w", err)
	}
	renderer := report.NewSVGRenderer()

	trackLabels := make([]string, len(trackMetrics))
	trackRatios := make([]float64, len(trackMetrics))
	for i, t := range trackMetrics {
		trackLabels[i] = string(t.TrackID)
		trackRatios[i] = t.UtilisationRatio
	}
	if err := os.WriteFile(
		filepath.Join(chartsDir, "track_utilisation.svg"),
		[]byte(renderer.BarChart("Track utilisation", trackLabels, trackRatios)),
		0o644,
	); err != nil {
		return fmt.Errorf("writing track_utilisation.svg: %w", err)
	}

	shopLabels := make([]string, len(workshopMetrics))
	shopRatios := make([]float64, len(workshopMetrics))
	for i, w := range workshopMetrics {
		shopLabels[i] = string(w.WorkshopID)
		shopRatios[i] = w.UtilisationRatio
	}
	if err := os.WriteFile(
		filepath.Join(chartsDir, "workshop_utilisation.svg"),
		[]byte(renderer.BarChart("Workshop utilisation", shopLabels, shopRatios)),
		0o644,
	); err != nil {
		return fmt.Errorf("writing workshop_utilisation.svg: %w", err)
	}

	locoLabels := make([]string, len(locoMetrics))
	locoRatios := make([]float64, len(locoMetrics))
	for i, l := range locoMetrics {
		locoLabels[i] = string(l.LocomotiveID)
		locoRatios[i] = l.UtilisationRatio
	}
	if err := os.WriteFile(
		filepath.Join(chartsDir, "locomotive_utilisation.svg"),
		[]byte(renderer.BarChart("Locomotive utilisation", locoLabels, locoRatios)),
		0o644,
	); err != nil {
		return fmt.Errorf("writing locomotive_utilisation.svg: %w", err)
	}

	throughputLabels, throughputValues := cumulativeThroughput(wagons)
	if err := os.WriteFile(
		filepath.Join(chartsDir, "throughput_over_time.svg"),
		[]byte(renderer.LineChart("Cumulative wagons retrofitted", throughputLabels, throughputValues)),
		0o644,
	); err != nil {
		return fmt.Errorf("writing throughput_over_time.svg: %w", err)
	}

	waitLabels, waitCounts := waitingTimeHistogram(wagons)
	if err := os.WriteFile(
		filepath.Join(chartsDir, "waiting_time.svg"),
		[]byte(renderer.BarChart("Waiting time distribution (minutes)", waitLabels, waitCounts)),
		0o644,
	); err != nil {
		return fmt.Errorf("writing waiting_time.svg: %w", err)
	}

	return nil
}

// cumulativeThroughput builds a running count of wagons reaching ON_PARKING,
// ordered by terminal time, for the throughput-over-time chart.
func cumulativeThroughput(wagons []*domain.Wagon) ([]string, []float64) {
	terminal := make([]*domain.Wagon, 0, len(wagons))
	for _, w := range wagons {
		if w.Status == domain.WagonOnParking {
			terminal = append(terminal, w)
		}
	}
	sort.Slice(terminal, func(i, j int) bool { return terminal[i].TerminalTime < terminal[j].TerminalTime })

	labels := make([]string, len(terminal))
	values := make([]float64, len(terminal))
	for i, w := range terminal {
		labels[i] = strconv.FormatFloat(w.TerminalTime, 'f', 0, 64)
		values[i] = float64(i + 1)
	}
	return labels, values
}

// waitingTimeBuckets are the histogram bin edges, in minutes, for the
// waiting-time distribution chart.
var waitingTimeBuckets = []float64{15, 30, 60, 120, 240}

// waitingTimeHistogram buckets retrofit_start_time - placed_on_retrofit_time
// across every retrofitted wagon into the fixed bins of waitingTimeBuckets
// plus one open-ended bin above the last edge.
func waitingTimeHistogram(wagons []*domain.Wagon) ([]string, []float64) {
	counts := make([]float64, len(waitingTimeBuckets)+1)
	for _, w := range wagons {
		if w.Status != domain.WagonOnParking || w.RetrofitStartTime <= 0 {
			continue
		}
		wait := w.RetrofitStartTime - w.PlacedOnRetrofitTime
		idx := len(waitingTimeBuckets)
		for i, edge := range waitingTimeBuckets {
			if wait <= edge {
				idx = i
				break
			}
		}
		counts[idx]++
	}

	labels := make([]string, len(counts))
	prev := 0.0
	for i, edge := range waitingTimeBuckets {
		labels[i] = fmt.Sprintf("%g-%g", prev, edge)
		prev = edge
	}
	labels[len(labels)-1] = fmt.Sprintf(">%g", prev)
	return labels, counts
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario-path", "", "path to the scenario directory (required)")
	runCmd.Flags().StringVar(&outputPath, "output-path", "", "path to write reports into (required)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip rendering SVG charts")
	runCmd.Flags().Int64Var(&seedOverride, "seed", 0, "override the scenario's embedded RNG seed")
	runCmd.MarkFlagRequired("scenario-path")
	runCmd.MarkFlagRequired("output-path")

	rootCmd.AddCommand(runCmd)
}
