package spotify

// Followers holds an artist's follower summary.
type Followers struct {
	Total int `json:"total"`
}

// Artist represents a Spotify artist object, reduced to the fields the
// enrichment report reads. Immutable once fetched.
type Artist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Popularity int       `json:"popularity"`
	Followers  Followers `json:"followers"`
}

// AlbumArtist identifies an artist credited on an album.
type AlbumArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album represents a Spotify album object as returned by the artist
// albums endpoint. ReleaseDate is passed through verbatim: depending on
// ReleaseDatePrecision it may be a year, a year-month, or a full date.
type Album struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	ReleaseDate          string        `json:"release_date"`
	ReleaseDatePrecision string        `json:"release_date_precision"`
	Artists              []AlbumArtist `json:"artists"`
}

// severalArtistsResponse is the envelope of the batch artist endpoint.
// Unmatched IDs come back as null slots in the array.
type severalArtistsResponse struct {
	Artists []*Artist `json:"artists"`
}

// artistAlbumsResponse is the paged envelope of the artist albums
// endpoint. Only the first item of the first page is ever requested.
type artistAlbumsResponse struct {
	Items []Album `json:"items"`
	Total int     `json:"total"`
}
