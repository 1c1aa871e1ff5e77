// Package enrich implements the enrichment orchestrator: it resolves the
// requested artist IDs, fans out the upstream fetches through the batch
// executor and retry wrapper, and assembles the per-identifier report.
package enrich

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/spotifetch/spotifetch/pkg/batch"
	"github.com/spotifetch/spotifetch/pkg/logging"
	"github.com/spotifetch/spotifetch/pkg/spotify"
)

// Enricher drives a single enrichment run against an authenticated
// Spotify client.
type Enricher struct {
	client      *spotify.Client
	concurrency int
	maxRetries  int
	logger      zerolog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithConcurrency sets the in-flight ceiling for both fetch phases.
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithMaxRetries sets the rate limit retry ceiling per operation.
func WithMaxRetries(n int) Option {
	return func(e *Enricher) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// New creates an Enricher for the given client.
func New(client *spotify.Client, opts ...Option) *Enricher {
	e := &Enricher{
		client:      client,
		concurrency: batch.DefaultConcurrency,
		maxRetries:  spotify.DefaultMaxRetries,
		logger:      logging.NewLogger("enricher"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run fetches artist metadata and latest releases for ids and merges
// them into a per-identifier report.
//
// The two phases run sequentially: artist records first (batched 50 IDs
// per request), then latest releases (one request per artist). On
// failure the partially populated report is still returned alongside
// the error so the caller can write best-effort output.
func (e *Enricher) Run(ctx context.Context, ids []string) (*Report, error) {
	deduped := Dedupe(ids)
	report := NewReport(deduped)

	e.logger.Info().
		Int("requested", len(ids)).
		Int("distinct", len(deduped)).
		Msg("Starting enrichment run")

	if err := e.fetchArtists(ctx, deduped, report); err != nil {
		return report, err
	}

	if err := e.fetchLatestReleases(ctx, deduped, report); err != nil {
		return report, err
	}

	e.logger.Info().
		Int("artists", len(deduped)).
		Msg("Enrichment run complete")

	return report, nil
}

// fetchArtists resolves artist records in chunks of up to 50 IDs per
// upstream call, at most e.concurrency chunk lookups in flight.
func (e *Enricher) fetchArtists(ctx context.Context, ids []string, report *Report) error {
	chunks := Chunk(ids, spotify.MaxIDsPerRequest)

	results, err := batch.Run(ctx, chunks, e.concurrency,
		func(ctx context.Context, chunk []string, index int) ([]spotify.Artist, error) {
			e.logger.Debug().
				Int("index", index).
				Int("ids", len(chunk)).
				Msg("Fetching artist chunk")
			return spotify.WithRetryN(ctx, e.maxRetries, func() ([]spotify.Artist, error) {
				return e.client.GetSeveralArtists(ctx, chunk)
			})
		})

	// Merge whatever completed even when a later chunk failed, so a
	// failed run still produces partial output.
	for _, artists := range results {
		for _, artist := range artists {
			report.AddArtist(artist)
		}
	}

	return err
}

// fetchLatestReleases resolves each artist's most recent release with
// one request per artist, at most e.concurrency in flight.
func (e *Enricher) fetchLatestReleases(ctx context.Context, ids []string, report *Report) error {
	results, err := batch.Run(ctx, ids, e.concurrency,
		func(ctx context.Context, artistID string, index int) (*spotify.Album, error) {
			e.logger.Debug().
				Int("index", index).
				Str("artist_id", artistID).
				Msg("Fetching latest release")
			return spotify.WithRetryN(ctx, e.maxRetries, func() (*spotify.Album, error) {
				return e.client.GetLatestAlbum(ctx, artistID)
			})
		})

	for i, album := range results {
		if album != nil {
			report.AddRelease(ids[i], album)
		}
	}

	return err
}

// Dedupe returns the distinct IDs in order of first occurrence.
func Dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	deduped := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)
	}
	return deduped
}

// Chunk partitions ids into consecutive groups of at most size elements,
// preserving order.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
