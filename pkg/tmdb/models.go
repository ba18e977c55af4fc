package tmdb

// PosterBaseURL prefixes poster paths into full image URLs for clients.
const PosterBaseURL = "https://image.tmdb.org/t/p/w500"

type searchResponse struct {
	Page         int            `json:"page"`
	Results      []searchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

type searchResult struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
}

// SearchResult is the projection of a search hit returned to callers for
// disambiguation.
type SearchResult struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date,omitempty"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CollectionRef is the collection membership stub embedded in title details.
type CollectionRef struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	PosterPath string `json:"poster_path"`
}

type Provider struct {
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

type providerRegion struct {
	Flatrate []Provider `json:"flatrate"`
}

type watchProviders struct {
	Results map[string]providerRegion `json:"results"`
}

// Details is a title detail response. Movie and TV responses share this
// shape; the fields the other kind lacks stay empty.
type Details struct {
	ID                  int             `json:"id"`
	Title               string          `json:"title"`
	Name                string          `json:"name"`
	Overview            string          `json:"overview"`
	PosterPath          string          `json:"poster_path"`
	VoteAverage         float64         `json:"vote_average"`
	ReleaseDate         string          `json:"release_date"`
	FirstAirDate        string          `json:"first_air_date"`
	Genres              []Genre         `json:"genres"`
	BelongsToCollection *CollectionRef  `json:"belongs_to_collection"`
	WatchProviders      *watchProviders `json:"watch/providers"`
}

// CanonicalTitle is the display title regardless of kind.
func (d *Details) CanonicalTitle() string {
	return firstNonEmpty(d.Title, d.Name)
}

// ReleaseOrAirDate is the release date regardless of kind.
func (d *Details) ReleaseOrAirDate() string {
	return firstNonEmpty(d.ReleaseDate, d.FirstAirDate)
}

// Providers returns the flatrate streaming providers, preferring the US
// region and falling back to IN.
func (d *Details) Providers() []Provider {
	if d.WatchProviders == nil {
		return nil
	}
	for _, region := range []string{"US", "IN"} {
		if r, ok := d.WatchProviders.Results[region]; ok && len(r.Flatrate) > 0 {
			return r.Flatrate
		}
	}
	return nil
}

// CollectionPart is one title within a franchise.
type CollectionPart struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// Collection is a franchise and its member titles.
type Collection struct {
	ID         int              `json:"id"`
	Name       string           `json:"name"`
	Overview   string           `json:"overview"`
	PosterPath string           `json:"poster_path"`
	Parts      []CollectionPart `json:"parts"`
}
