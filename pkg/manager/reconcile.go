package manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"entracker/pkg/logger"
	"entracker/pkg/media"
)

// AddMediaRequest describes what is required to add a title. The id comes
// from a prior search so the caller has already disambiguated.
type AddMediaRequest struct {
	MediaType   string `json:"mediaType" validate:"required"`
	TMDBID      int    `json:"tmdbId" validate:"required"`
	Watched     string `json:"watched" validate:"required"`
	WatchedTill string `json:"watchedTill"`
}

type AddMediaResponse struct {
	Message string       `json:"message"`
	Data    media.Record `json:"data"`
}

// AddMedia resolves the title, rejects duplicates, synthesizes the status
// fields, and appends the primary row. When the title belongs to a
// collection, the rest of the franchise is populated on a detached
// goroutine after the primary append; the caller never observes that work.
//
// The duplicate check and the append are two separate remote calls, so two
// near-simultaneous adds of the same title can both pass the check. That
// race is inherited from the sheet's lack of transactions and is accepted.
func (m MediaManager) AddMedia(ctx context.Context, req AddMediaRequest) (*AddMediaResponse, error) {
	log := logger.FromCtx(ctx)

	t, cfg, err := parseType(req.MediaType)
	if err != nil {
		return nil, err
	}

	details, err := m.tmdb.Details(ctx, kindFor(t), req.TMDBID)
	if err != nil {
		log.Error("failed to resolve title", zap.Int("tmdb_id", req.TMDBID), zap.Error(err))
		return nil, err
	}

	name := details.CanonicalTitle()

	values, err := m.store.ReadAll(ctx, cfg.Range)
	if err != nil {
		return nil, err
	}

	existing := existingNames(values)
	if _, ok := existing[strings.ToLower(name)]; ok {
		return nil, fmt.Errorf("%q: %w", name, ErrAlreadyExists)
	}

	fields, err := m.oracle.Synthesize(ctx, t, name)
	if err != nil {
		log.Error("field synthesis failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	// Franchise and release date come from the metadata service, never the
	// oracle; the oracle is unreliable for structured facts.
	franchise := media.Standalone
	collection := details.BelongsToCollection
	if t.IsMovie() && collection != nil {
		franchise = media.FranchiseName(collection.Name)
	}

	record := media.BuildRecord(t, name, fields, franchise, details.ReleaseOrAirDate(), req.WatchedTill, media.ParseWatched(req.Watched), time.Now())

	if err := m.store.Append(ctx, cfg.Range, [][]string{media.ToRow(cfg, record)}); err != nil {
		return nil, err
	}

	if t.IsMovie() && collection != nil {
		existing[strings.ToLower(name)] = struct{}{}
		// Detached from the request; errors are contained and logged in
		// populateFranchise, never surfaced to the caller.
		go m.populateFranchise(context.WithoutCancel(ctx), t, cfg, collection.ID, franchise, existing)
	}

	return &AddMediaResponse{
		Message: "Media added successfully!",
		Data:    record,
	}, nil
}

// populateFranchise appends a row for every collection member not already
// stored. All sibling rows go out in one batch so an interruption cannot
// leave the franchise half-written without a trace.
func (m MediaManager) populateFranchise(ctx context.Context, t media.Type, cfg media.Config, collectionID int, franchise string, existing map[string]struct{}) {
	log := logger.FromCtx(ctx).With(zap.String("scope", "population"), zap.String("franchise", franchise))

	defer func() {
		if r := recover(); r != nil {
			log.Error("franchise population panicked", zap.Any("panic", r))
		}
	}()

	collection, err := m.tmdb.Collection(ctx, collectionID)
	if err != nil {
		log.Error("failed to fetch collection", zap.Int("collection_id", collectionID), zap.Error(err))
		return
	}

	now := time.Now()
	rows := make([][]string, 0, len(collection.Parts))
	for _, part := range collection.Parts {
		if part.Title == "" {
			continue
		}
		key := strings.ToLower(part.Title)
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = struct{}{}

		record := media.SiblingRecord(t, part.Title, franchise, part.ReleaseDate, now)
		rows = append(rows, media.ToRow(cfg, record))
	}

	if len(rows) == 0 {
		return
	}

	if err := m.store.Append(ctx, cfg.Range, rows); err != nil {
		log.Error("failed to append franchise rows", zap.Int("rows", len(rows)), zap.Error(err))
		return
	}

	log.Info("populated franchise", zap.Int("rows", len(rows)))
}

// existingNames builds the case-insensitive membership set used for
// duplicate checks. The name column is always the first column.
func existingNames(values [][]string) map[string]struct{} {
	names := make(map[string]struct{})
	if len(values) < 2 {
		return names
	}
	for _, row := range values[1:] {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		names[strings.ToLower(row[0])] = struct{}{}
	}
	return names
}
