// Package output serializes enrichment reports to CSV or JSON files.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spotifetch/spotifetch/internal/enrich"
)

// Format selects the output file format.
type Format string

const (
	// FormatCSV writes one row per requested artist ID.
	FormatCSV Format = "csv"

	// FormatJSON writes an object keyed by artist ID.
	FormatJSON Format = "json"
)

// ParseFormat validates a format selector.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected csv or json)", s)
	}
}

// WriteFile serializes report to the file at path, creating or
// truncating it.
func WriteFile(path string, format Format, report *enrich.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := Write(f, format, report); err != nil {
		return err
	}
	return f.Close()
}

// Write serializes report to w.
func Write(w io.Writer, format Format, report *enrich.Report) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, report)
	case FormatJSON:
		return writeJSON(w, report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// csvHeader is the fixed column layout of the CSV report.
var csvHeader = []string{"artist_id", "name", "popularity", "followers", "latest_release", "release_date"}

func writeCSV(w io.Writer, report *enrich.Report) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, row := range report.Rows() {
		record := []string{row.ArtistID, "", "", "", "", ""}
		if row.Artist != nil {
			record[1] = row.Artist.Name
			record[2] = strconv.Itoa(row.Artist.Popularity)
			record[3] = strconv.Itoa(row.Artist.Followers.Total)
		}
		if row.LatestRelease != nil {
			record[4] = row.LatestRelease.Name
			record[5] = row.LatestRelease.ReleaseDate
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV row for %s: %w", row.ArtistID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// jsonArtist is the artist sub-object of a JSON report entry.
type jsonArtist struct {
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	Followers  int    `json:"followers"`
}

// jsonRelease is the latest release sub-object of a JSON report entry.
type jsonRelease struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// jsonRow is one JSON report entry. Nil sub-objects render as null:
// absence of upstream data is explicit in the output.
type jsonRow struct {
	Artist        *jsonArtist  `json:"artist"`
	LatestRelease *jsonRelease `json:"latest_release"`
}

func writeJSON(w io.Writer, report *enrich.Report) error {
	entries := make(map[string]jsonRow, report.Len())
	for _, row := range report.Rows() {
		entry := jsonRow{}
		if row.Artist != nil {
			entry.Artist = &jsonArtist{
				Name:       row.Artist.Name,
				Popularity: row.Artist.Popularity,
				Followers:  row.Artist.Followers.Total,
			}
		}
		if row.LatestRelease != nil {
			entry.LatestRelease = &jsonRelease{
				ID:          row.LatestRelease.ID,
				Name:        row.LatestRelease.Name,
				ReleaseDate: row.LatestRelease.ReleaseDate,
			}
		}
		entries[row.ArtistID] = entry
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("encode JSON report: %w", err)
	}
	return nil
}
