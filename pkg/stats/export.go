package stats

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes the report as a spreadsheet with one sheet per section.
func (r Report) ExportXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	coverage := [][]any{
		{"Metric", "Value"},
		{"Total episodes", r.Coverage.TotalEpisodes},
		{"Episodes with dates", r.Coverage.EpisodesWithDate},
		{"Date range", r.Coverage.DateRange},
		{"Period covered (days)", r.Coverage.PeriodDays},
		{"Average episodes/month", r.Coverage.EpisodesPerMonth},
	}
	if r.Coverage.Earliest != nil {
		coverage = append(coverage, []any{"Earliest episode", r.Coverage.Earliest.Title})
	}
	if r.Coverage.Latest != nil {
		coverage = append(coverage, []any{"Latest episode", r.Coverage.Latest.Title})
	}
	if err := writeSheet(f, "Coverage", coverage); err != nil {
		return err
	}

	content := [][]any{
		{"Metric", "Value"},
		{"Episodes with transcriptions", r.Content.TotalTranscriptions},
		{"Total words", r.Content.TotalWords},
		{"Total characters", r.Content.TotalCharacters},
		{"Average words/episode", r.Content.AvgWords},
		{"Average characters/episode", r.Content.AvgCharacters},
	}
	if r.Content.Shortest != nil {
		content = append(content, []any{"Shortest episode",
			fmt.Sprintf("%s (%d words)", r.Content.Shortest.Title, r.Content.Shortest.Words)})
	}
	if r.Content.Longest != nil {
		content = append(content, []any{"Longest episode",
			fmt.Sprintf("%s (%d words)", r.Content.Longest.Title, r.Content.Longest.Words)})
	}
	if err := writeSheet(f, "Content", content); err != nil {
		return err
	}

	quality := [][]any{
		{"Metric", "Value"},
		{"Total episodes", r.Quality.TotalEpisodes},
		{"Episodes with transcriptions", r.Quality.WithTranscriptions},
		{"Episodes with dates", r.Quality.WithDates},
		{"Episodes with audio URLs", r.Quality.WithAudioURLs},
		{"Completion %", r.Quality.CompletionPercent},
	}
	for _, item := range r.Quality.MissingData {
		quality = append(quality, []any{item.Title, strings.Join(item.Issues, ", ")})
	}
	if err := writeSheet(f, "Quality", quality); err != nil {
		return err
	}

	// Drop the default sheet so only the report sheets remain.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report to %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+1, name, err)
		}
	}
	return nil
}
