package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/spotifetch/spotifetch/internal/testutil"
	"github.com/spotifetch/spotifetch/pkg/spotify"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "repeats in arbitrary positions",
			input:    []string{"A", "B", "A", "C", "B", "A"},
			expected: []string{"A", "B", "C"},
		},
		{
			name:     "no repeats",
			input:    []string{"x", "y", "z"},
			expected: []string{"x", "y", "z"},
		},
		{
			name:     "empty strings dropped",
			input:    []string{"", "a", "", "a"},
			expected: []string{"a"},
		},
		{
			name:     "empty input",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("Dedupe(%v) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Dedupe(%v)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestChunk(t *testing.T) {
	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%03d", i)
	}

	chunks := Chunk(ids, 50)
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 50 || len(chunks[1]) != 50 || len(chunks[2]) != 20 {
		t.Errorf("chunk sizes = %d/%d/%d, want 50/50/20", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if chunks[0][0] != "id000" || chunks[2][19] != "id119" {
		t.Error("chunking reordered or dropped elements")
	}

	if Chunk(nil, 50) != nil {
		t.Error("Chunk(nil) should be nil")
	}
}

// newTestEnricher builds an enricher against the mock server with an
// artists endpoint that echoes every requested ID back as a record.
func newTestEnricher(t *testing.T, mock *testutil.MockSpotify, opts ...Option) *Enricher {
	t.Helper()

	client, err := spotify.New(spotify.Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		BaseURL:      mock.URL(),
		TokenURL:     mock.TokenURL(),
	})
	if err != nil {
		t.Fatalf("spotify.New failed: %v", err)
	}
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	return New(client, opts...)
}

// echoArtists makes /v1/artists return a record for every requested ID.
func echoArtists(mock *testutil.MockSpotify) {
	mock.SetHandler("/v1/artists", func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		artists := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			artists = append(artists, testutil.NewArtist(id, "Artist "+id, 50, 100))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"artists": artists})
	})
}

// emptyAlbums makes every albums endpoint return no releases.
func emptyAlbums(mock *testutil.MockSpotify, ids []string) {
	for _, id := range ids {
		mock.SetAlbumsResponse(id)
	}
}

func TestRun_ChunksArtistFetchesBy50(t *testing.T) {
	mock := testutil.NewMockSpotify()
	defer mock.Close()

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%03d", i)
	}

	echoArtists(mock)
	emptyAlbums(mock, ids)

	for _, concurrency := range []int{1, 2, 10} {
		mock.Reset()
		enricher := newTestEnricher(t, mock, WithConcurrency(concurrency))

		report, err := enricher.Run(context.Background(), ids)
		if err != nil {
			t.Fatalf("concurrency %d: Run failed: %v", concurrency, err)
		}

		// 120 distinct IDs are always exactly 3 batch calls (50/50/20),
		// regardless of the scheduling ceiling.
		if got := mock.GetPathCount("/v1/artists"); got != 3 {
			t.Errorf("concurrency %d: artist batch calls = %d, want 3", concurrency, got)
		}
		if report.Len() != 120 {
			t.Errorf("concurrency %d: report rows = %d, want 120", concurrency, report.Len())
		}
	}
}

func TestRun_EndToEnd(t *testing.T) {
	mock := testutil.NewMockSpotify()
	defer mock.Close()

	// A and B match upstream, C does not.
	mock.SetArtistsResponse([]map[string]any{
		testutil.NewArtist("A", "Alpha", 90, 500000),
		testutil.NewArtist("B", "Beta", 40, 2000),
		nil,
	})
	// Only A has a release.
	mock.SetAlbumsResponse("A", testutil.NewAlbum("alb-a", "First Light", "2023-11-03", "day", "A"))
	mock.SetAlbumsResponse("B")
	mock.SetAlbumsResponse("C")

	enricher := newTestEnricher(t, mock)
	report, err := enricher.Run(context.Background(), []string{"A", "B", "A", "C"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Duplicate A collapses: 3 rows, first-occurrence order.
	if report.Len() != 3 {
		t.Fatalf("report rows = %d, want 3", report.Len())
	}
	ids := report.IDs()
	if ids[0] != "A" || ids[1] != "B" || ids[2] != "C" {
		t.Errorf("row order = %v, want [A B C]", ids)
	}

	a := report.Row("A")
	if a.Artist == nil || a.Artist.Name != "Alpha" || a.Artist.Popularity != 90 {
		t.Errorf("row A artist = %+v", a.Artist)
	}
	if a.LatestRelease == nil || a.LatestRelease.Name != "First Light" || a.LatestRelease.ReleaseDate != "2023-11-03" {
		t.Errorf("row A release = %+v", a.LatestRelease)
	}

	b := report.Row("B")
	if b.Artist == nil || b.Artist.Name != "Beta" {
		t.Errorf("row B artist = %+v", b.Artist)
	}
	if b.LatestRelease != nil {
		t.Errorf("row B release = %+v, want nil", b.LatestRelease)
	}

	// C is requested but unmatched: the row exists with absent fields.
	c := report.Row("C")
	if c == nil {
		t.Fatal("row C missing from report")
	}
	if c.Artist != nil || c.LatestRelease != nil {
		t.Errorf("row C = %+v, want empty row", c)
	}

	// One artist batch call for the three distinct IDs, one albums call
	// per artist.
	if got := mock.GetPathCount("/v1/artists"); got != 1 {
		t.Errorf("artist batch calls = %d, want 1", got)
	}
	for _, id := range []string{"A", "B", "C"} {
		if got := mock.GetPathCount("/v1/artists/" + id + "/albums"); got != 1 {
			t.Errorf("albums calls for %s = %d, want 1", id, got)
		}
	}
}

func TestRun_RetriesRateLimitedChunk(t *testing.T) {
	mock := testutil.NewMockSpotify()
	defer mock.Close()

	mock.SetRateLimitSequence("/v1/artists", 2, "0", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := json.Marshal(map[string]any{"artists": []map[string]any{
			testutil.NewArtist("A", "Alpha", 90, 500000),
		}})
		w.Write(body)
	})
	mock.SetAlbumsResponse("A")

	enricher := newTestEnricher(t, mock)
	report, err := enricher.Run(context.Background(), []string{"A"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := mock.GetPathCount("/v1/artists"); got != 3 {
		t.Errorf("artist calls = %d, want 3 (two 429s then success)", got)
	}
	if report.Row("A").Artist == nil {
		t.Error("artist record missing after retried fetch")
	}
}

func TestRun_FailureReturnsPartialReport(t *testing.T) {
	mock := testutil.NewMockSpotify()
	defer mock.Close()

	echoArtists(mock)
	mock.SetAlbumsResponse("A", testutil.NewAlbum("alb-a", "First Light", "2023", "year", "A"))
	mock.SetResponse("/v1/artists/B/albums", testutil.MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"error": {"status": 403, "message": "bad scope"}}`,
	})

	enricher := newTestEnricher(t, mock, WithConcurrency(1))
	report, err := enricher.Run(context.Background(), []string{"A", "B"})

	if err == nil {
		t.Fatal("expected error from failing release fetch")
	}
	if report == nil {
		t.Fatal("partial report must be returned on failure")
	}
	// Artist phase completed before the release phase failed.
	if report.Row("A").Artist == nil || report.Row("B").Artist == nil {
		t.Error("artist records missing from partial report")
	}
	// A's release completed in the group before B's failure.
	if report.Row("A").LatestRelease == nil {
		t.Error("completed release result missing from partial report")
	}
}
