package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/popupsim/popupsim/internal/domain"
)

// WriteEvents writes one event-stream CSV (time,kind,subject_id,
// payload_json) for every event in events.
func WriteEvents(path string, events []domain.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "kind", "subject_id", "payload_json"}); err != nil {
		return err
	}
	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("report: marshalling payload for %s: %w", e.Subject, err)
		}
		row := []string{
			strconv.FormatFloat(e.Time, 'f', -1, 64),
			e.Kind,
			e.Subject,
			string(payload),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteSummary writes summary.csv as a flat key/value table.
func WriteSummary(path string, s Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	rows := [][]string{
		{"scenario_id", s.ScenarioID},
		{"duration_hours", strconv.FormatFloat(s.DurationHours, 'f', -1, 64)},
		{"total_wagons_processed", strconv.Itoa(s.TotalWagonsProcessed)},
		{"retrofitted", strconv.Itoa(s.Retrofitted)},
		{"rejected", strconv.Itoa(s.Rejected)},
		{"throughput_per_hour", strconv.FormatFloat(s.ThroughputPerHour, 'f', -1, 64)},
		{"throughput_per_day", strconv.FormatFloat(s.ThroughputPerDay, 'f', -1, 64)},
		{"avg_flow_time_minutes", strconv.FormatFloat(s.AvgFlowTimeMinutes, 'f', -1, 64)},
		{"avg_waiting_time_minutes", strconv.FormatFloat(s.AvgWaitingTimeMinutes, 'f', -1, 64)},
	}
	if err := w.Write([]string{"key", "value"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteTrackMetrics writes track_metrics.csv.
func WriteTrackMetrics(path string, rows []TrackMetric) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"track_id", "role", "occupied_length", "capacity", "utilisation_ratio", "wagon_count"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{
			string(r.TrackID),
			string(r.Role),
			strconv.FormatFloat(r.OccupiedLength, 'f', -1, 64),
			strconv.FormatFloat(r.Capacity, 'f', -1, 64),
			strconv.FormatFloat(r.UtilisationRatio, 'f', -1, 64),
			strconv.Itoa(r.WagonCount),
		}); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteWorkshopMetrics writes workshop_metrics.csv.
func WriteWorkshopMetrics(path string, rows []WorkshopMetric) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"workshop_id", "name", "active_retrofits", "capacity", "utilisation_ratio"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{
			string(r.WorkshopID),
			r.Name,
			strconv.Itoa(r.ActiveRetrofits),
			strconv.Itoa(r.Capacity),
			strconv.FormatFloat(r.UtilisationRatio, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteLocomotiveMetrics writes locomotive_metrics.csv.
func WriteLocomotiveMetrics(path string, rows []LocomotiveMetric) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"locomotive_id", "busy_minutes", "total_minutes", "utilisation_ratio"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{
			string(r.LocomotiveID),
			strconv.FormatFloat(r.BusyMinutes, 'f', -1, 64),
			strconv.FormatFloat(r.TotalMinutes, 'f', -1, 64),
			strconv.FormatFloat(r.UtilisationRatio, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteBottlenecks writes bottlenecks.csv.
func WriteBottlenecks(path string, rows []Bottleneck) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"kind", "subject_id", "threshold", "ratio", "duration_minutes", "severity"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{
			string(r.Kind),
			r.SubjectID,
			strconv.FormatFloat(r.Threshold, 'f', -1, 64),
			strconv.FormatFloat(r.Ratio, 'f', -1, 64),
			strconv.FormatFloat(r.Duration, 'f', -1, 64),
			strconv.FormatFloat(r.Severity, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	return w.Error()
}
