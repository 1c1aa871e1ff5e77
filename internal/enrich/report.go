package enrich

import "github.com/spotifetch/spotifetch/pkg/spotify"

// Row is the per-identifier enrichment result. Either pointer may be
// nil: a nil Artist means the ID was not matched upstream, a nil
// LatestRelease means the artist has no releases (or the release phase
// did not complete).
type Row struct {
	ArtistID      string
	Artist        *spotify.Artist
	LatestRelease *spotify.Album
}

// Report is the per-identifier lookup handed to the output writer.
// Every requested ID gets exactly one row, in order of first occurrence,
// even when no upstream data was found for it. Rows are written at most
// once per key during the fetch phases and read-only afterwards.
type Report struct {
	ids  []string
	rows map[string]*Row
}

// NewReport creates a report with one empty row per deduplicated ID.
func NewReport(ids []string) *Report {
	rows := make(map[string]*Row, len(ids))
	for _, id := range ids {
		rows[id] = &Row{ArtistID: id}
	}
	return &Report{ids: ids, rows: rows}
}

// IDs returns the deduplicated identifiers in first-occurrence order.
func (r *Report) IDs() []string {
	return r.ids
}

// Row returns the row for id, or nil if id was never requested.
func (r *Report) Row(id string) *Row {
	return r.rows[id]
}

// Rows returns all rows in first-occurrence order.
func (r *Report) Rows() []*Row {
	rows := make([]*Row, 0, len(r.ids))
	for _, id := range r.ids {
		rows = append(rows, r.rows[id])
	}
	return rows
}

// Len returns the number of rows.
func (r *Report) Len() int {
	return len(r.ids)
}

// AddArtist attaches an artist record to its row. Records for IDs that
// were never requested are ignored.
func (r *Report) AddArtist(artist spotify.Artist) {
	if row, ok := r.rows[artist.ID]; ok {
		a := artist
		row.Artist = &a
	}
}

// AddRelease attaches a latest release record to the row for artistID.
func (r *Report) AddRelease(artistID string, album *spotify.Album) {
	if row, ok := r.rows[artistID]; ok {
		row.LatestRelease = album
	}
}
