package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// MaxIDsPerRequest is the upstream limit on the number of artist IDs a
// single batch lookup may carry.
const MaxIDsPerRequest = 50

// GetSeveralArtists fetches up to MaxIDsPerRequest artists in a single
// request. IDs are comma-joined into one query parameter. IDs unknown to
// Spotify are silently absent from the result (null slots in the
// upstream array are dropped), never an error.
func (c *Client) GetSeveralArtists(ctx context.Context, ids []string) ([]Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxIDsPerRequest {
		return nil, fmt.Errorf("too many artist IDs: %d (max %d)", len(ids), MaxIDsPerRequest)
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))

	var resp severalArtistsResponse
	if err := c.get(ctx, "/v1/artists", query, &resp); err != nil {
		return nil, err
	}

	artists := make([]Artist, 0, len(resp.Artists))
	for _, a := range resp.Artists {
		if a == nil {
			continue
		}
		artists = append(artists, *a)
	}

	if len(artists) < len(ids) {
		c.logger.Warn().
			Int("requested", len(ids)).
			Int("matched", len(artists)).
			Msg("Some artist IDs were not matched upstream")
	}

	return artists, nil
}

// GetLatestAlbum fetches the artist's most recent release by requesting
// the albums endpoint with page size 1 (Spotify orders most-recent-first
// by default). An artist with no releases yields (nil, nil): absence is
// a valid outcome, not an error.
func (c *Client) GetLatestAlbum(ctx context.Context, artistID string) (*Album, error) {
	query := url.Values{}
	query.Set("limit", "1")

	endpoint := fmt.Sprintf("/v1/artists/%s/albums", url.PathEscape(artistID))

	var resp artistAlbumsResponse
	if err := c.get(ctx, endpoint, query, &resp); err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 {
		c.logger.Debug().
			Str("artist_id", artistID).
			Msg("Artist has no releases")
		return nil, nil
	}

	album := resp.Items[0]
	return &album, nil
}
