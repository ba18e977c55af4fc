// Package manager orchestrates the metadata client, the field synthesizer,
// and the sheet store into the tracking workflows: search, add with
// franchise population, list, and update.
package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"entracker/pkg/cache"
	"entracker/pkg/logger"
	"entracker/pkg/media"
	"entracker/pkg/sheets"
	"entracker/pkg/tmdb"
)

var (
	// ErrAlreadyExists indicates the canonical title is already stored.
	ErrAlreadyExists = errors.New("media already exists")
	// ErrInvalidMediaType indicates an unknown or unsupported category.
	ErrInvalidMediaType = errors.New("invalid media type")
	// ErrNotFound indicates no stored or upstream entity matched.
	ErrNotFound = errors.New("media not found")
)

// MetadataClient is the slice of the tmdb client the manager depends on.
type MetadataClient interface {
	SearchMedia(ctx context.Context, kind tmdb.Kind, query string) ([]tmdb.SearchResult, error)
	SearchCollection(ctx context.Context, query string) ([]tmdb.SearchResult, error)
	Details(ctx context.Context, kind tmdb.Kind, id int) (*tmdb.Details, error)
	Collection(ctx context.Context, id int) (*tmdb.Collection, error)
}

// Synthesizer produces oracle-derived status fields for a title.
type Synthesizer interface {
	Synthesize(ctx context.Context, t media.Type, name string) (media.Fields, error)
}

type MediaManager struct {
	tmdb   MetadataClient
	oracle Synthesizer
	store  sheets.Store

	collections *cache.Cache[string, *tmdb.Collection]
	details     *cache.Cache[string, DetailsResponse]
}

// New creates a media manager.
func New(metadata MetadataClient, oracle Synthesizer, store sheets.Store) MediaManager {
	return MediaManager{
		tmdb:        metadata,
		oracle:      oracle,
		store:       store,
		collections: cache.New[string, *tmdb.Collection](),
		details:     cache.New[string, DetailsResponse](),
	}
}

func kindFor(t media.Type) tmdb.Kind {
	if t.IsMovie() {
		return tmdb.KindMovie
	}
	return tmdb.KindTV
}

func parseType(s string) (media.Type, media.Config, error) {
	t, err := media.ParseType(s)
	if err != nil {
		return "", media.Config{}, fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
	}

	cfg, ok := media.ConfigFor(t)
	if !ok {
		return "", media.Config{}, fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
	}

	return t, cfg, nil
}

// SearchMedia queries the metadata service for candidate titles so the
// caller can disambiguate before adding by id.
func (m MediaManager) SearchMedia(ctx context.Context, mediaType, name string) ([]tmdb.SearchResult, error) {
	log := logger.FromCtx(ctx)

	t, _, err := parseType(mediaType)
	if err != nil {
		return nil, err
	}

	if name == "" {
		return nil, errors.New("search name is empty")
	}

	results, err := m.tmdb.SearchMedia(ctx, kindFor(t), name)
	if err != nil {
		log.Error("media search failed", zap.Error(err))
		return nil, err
	}

	return results, nil
}

// GetMedia returns every stored row for a category, decoded with row
// indices for later updates.
func (m MediaManager) GetMedia(ctx context.Context, mediaType string) ([]sheets.Row, error) {
	_, cfg, err := parseType(mediaType)
	if err != nil {
		return nil, err
	}

	values, err := m.store.ReadAll(ctx, cfg.Range)
	if err != nil {
		return nil, err
	}

	rows := sheets.DecodeRows(values)
	if rows == nil {
		rows = []sheets.Row{}
	}

	return rows, nil
}

// ListFranchises returns the distinct franchise names stored for a
// movie-like category, first-seen order, Standalone excluded.
func (m MediaManager) ListFranchises(ctx context.Context, mediaType string) ([]string, error) {
	t, cfg, err := parseType(mediaType)
	if err != nil {
		return nil, err
	}
	if !t.IsMovie() {
		return nil, fmt.Errorf("%w: franchises exist only for movie categories", ErrInvalidMediaType)
	}

	values, err := m.store.ReadAll(ctx, cfg.Range)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	franchises := []string{}
	for _, row := range sheets.DecodeRows(values) {
		franchise := row.Get("franchise")
		if franchise == "" || strings.EqualFold(franchise, media.Standalone) {
			continue
		}
		key := strings.ToLower(franchise)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		franchises = append(franchises, franchise)
	}

	return franchises, nil
}

// FranchiseDetails is the collection summary shown alongside the stored rows.
type FranchiseDetails struct {
	Name       string  `json:"name,omitempty"`
	Overview   string  `json:"overview,omitempty"`
	PosterPath *string `json:"poster_path"`
}

type FranchiseResponse struct {
	Details FranchiseDetails `json:"details"`
	Movies  []sheets.Row     `json:"movies"`
}

// GetFranchise returns the stored rows grouped under a franchise name plus
// collection details from the metadata service. The grouping match is
// case-insensitive. A franchise with no stored rows is ErrNotFound; a
// franchise the metadata service does not know keeps empty details.
func (m MediaManager) GetFranchise(ctx context.Context, mediaType, name string) (*FranchiseResponse, error) {
	t, cfg, err := parseType(mediaType)
	if err != nil {
		return nil, err
	}
	if !t.IsMovie() {
		return nil, fmt.Errorf("%w: franchises exist only for movie categories", ErrInvalidMediaType)
	}

	values, err := m.store.ReadAll(ctx, cfg.Range)
	if err != nil {
		return nil, err
	}

	movies := []sheets.Row{}
	for _, row := range sheets.DecodeRows(values) {
		if strings.EqualFold(row.Get("franchise"), name) {
			movies = append(movies, row)
		}
	}

	if len(movies) == 0 {
		return nil, fmt.Errorf("%w: no stored titles for franchise %q", ErrNotFound, name)
	}

	details, err := m.franchiseDetails(ctx, name)
	if err != nil {
		return nil, err
	}

	return &FranchiseResponse{
		Details: details,
		Movies:  movies,
	}, nil
}

func (m MediaManager) franchiseDetails(ctx context.Context, name string) (FranchiseDetails, error) {
	key := strings.ToLower(name)
	if coll, ok := m.collections.Get(key); ok {
		return collectionSummary(coll), nil
	}

	results, err := m.tmdb.SearchCollection(ctx, name)
	if err != nil {
		return FranchiseDetails{}, err
	}
	if len(results) == 0 {
		return FranchiseDetails{}, nil
	}

	coll, err := m.tmdb.Collection(ctx, results[0].ID)
	if err != nil {
		return FranchiseDetails{}, err
	}

	m.collections.Set(key, coll)
	return collectionSummary(coll), nil
}

func collectionSummary(coll *tmdb.Collection) FranchiseDetails {
	return FranchiseDetails{
		Name:       coll.Name,
		Overview:   coll.Overview,
		PosterPath: posterURL(coll.PosterPath),
	}
}

// DetailsResponse is the ad hoc projection served to the details view.
type DetailsResponse struct {
	Name        string          `json:"name"`
	Overview    string          `json:"overview"`
	PosterPath  *string         `json:"poster_path"`
	VoteAverage float64         `json:"vote_average"`
	Genres      []string        `json:"genres"`
	Providers   []tmdb.Provider `json:"providers"`
}

// GetDetails resolves a stored title's name against the metadata service and
// projects the fields the details view renders.
func (m MediaManager) GetDetails(ctx context.Context, mediaType, name string) (*DetailsResponse, error) {
	t, _, err := parseType(mediaType)
	if err != nil {
		return nil, err
	}

	kind := kindFor(t)
	key := string(kind) + "/" + strings.ToLower(name)
	if cached, ok := m.details.Get(key); ok {
		return &cached, nil
	}

	results, err := m.tmdb.SearchMedia(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	d, err := m.tmdb.Details(ctx, kind, results[0].ID)
	if err != nil {
		return nil, err
	}

	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}

	providers := d.Providers()
	if providers == nil {
		providers = []tmdb.Provider{}
	}

	resp := DetailsResponse{
		Name:        d.CanonicalTitle(),
		Overview:    d.Overview,
		PosterPath:  posterURL(d.PosterPath),
		VoteAverage: d.VoteAverage,
		Genres:      genres,
		Providers:   providers,
	}

	m.details.Set(key, resp)
	return &resp, nil
}

func posterURL(path string) *string {
	if path == "" {
		return nil
	}
	u := tmdb.PosterBaseURL + path
	return &u
}
