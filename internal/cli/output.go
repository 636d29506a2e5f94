package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pfrederiksen/ski-spot/internal/ranking"
	"github.com/pfrederiksen/ski-spot/internal/resort"
	"github.com/pfrederiksen/ski-spot/internal/scraper"
	"github.com/pfrederiksen/ski-spot/internal/service"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// writeSearch outputs ranked search results. place, when set, is shown as
// the resolved location name.
func writeSearch(w io.Writer, result *service.SearchResult, place string, format OutputFormat, verbose bool) error {
	if format == FormatJSON {
		return writeJSON(w, result)
	}

	loc := result.UserLocation
	fmt.Fprintf(w, "Resorts within %.0f miles of %s (%.4f, %.4f)\n", result.Radius, loc.Query, loc.Latitude, loc.Longitude)
	if place != "" {
		fmt.Fprintf(w, "Near: %s\n", place)
	}

	if result.Count == 0 {
		fmt.Fprintln(w, "No resorts found.")
		return nil
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Resort", "State", "Drive", "Conditions", "Snow", "Overall", "Open"})
	for i, r := range result.Resorts {
		t.AppendRow(table.Row{
			i + 1,
			r.Name,
			r.State,
			formatDrive(r),
			r.ConditionsSummary,
			r.SnowQualityScore,
			r.OverallScore,
			openMark(r.IsOpen),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d resorts", result.Count)})
	t.Render()

	if verbose {
		fmt.Fprintf(w, "\nTimings: %s\n", formatTimings(result.Timings))
	}
	return nil
}

func formatDrive(r service.ResortResult) string {
	if r.DriveHours == nil {
		suffix := ""
		if r.StraightLine {
			suffix = " (straight)"
		}
		return fmt.Sprintf("%.1f mi%s", r.DriveMiles, suffix)
	}
	return fmt.Sprintf("%.1f mi, %s", r.DriveMiles, ranking.FormatDuration(*r.DriveHours))
}

func openMark(open bool) string {
	if open {
		return "yes"
	}
	return "no"
}

func formatTimings(timings map[string]int64) string {
	keys := []string{"geocoding_ms", "get_resorts_ms", "filter_distance_ms", "format_response_ms", "total_ms"}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := timings[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", k, v))
		}
	}
	return strings.Join(parts, " ")
}

// writeResorts outputs a listing of cached resorts
func writeResorts(w io.Writer, records []*resort.Resort, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, map[string]interface{}{
			"count":   len(records),
			"resorts": records,
		})
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No resorts cached. Run 'skispot scrape' or 'skispot seed'.")
		return nil
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Resort", "State", "Region", "Conditions", "Open", "Refreshed"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.Name,
			r.State,
			r.Region,
			r.ConditionsSummary(),
			openMark(r.IsOpen),
			r.LastRefreshed.Format("2006-01-02 15:04"),
		})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d resorts", len(records))})
	t.Render()
	return nil
}

// writeSummary outputs the result of a scrape
func writeSummary(w io.Writer, summary *scraper.Summary, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, summary)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Region", "Layout", "Found", "Saved", "Failed", "Located"})
	for _, res := range summary.Results {
		layout := res.Strategy
		if layout == "" {
			layout = "unrecognized"
		}
		t.AppendRow(table.Row{res.Region, layout, res.Found, res.Upserted, res.Failed, res.WithCoordinates})
	}
	t.SortBy([]table.SortBy{{Name: "Region", Mode: table.Asc}})
	t.Render()

	fmt.Fprintf(w, "\nSaved %d resorts from %d states in %.1fs\n", summary.Upserted, summary.States, summary.Duration)
	if len(summary.FailedStates) > 0 {
		fmt.Fprintf(w, "Failed: %s\n", strings.Join(summary.FailedStates, ", "))
	}
	return nil
}
