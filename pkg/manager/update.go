package manager

import (
	"context"
	"errors"

	"github.com/sourcegraph/conc/pool"

	"entracker/pkg/media"
)

// UpdateMediaRequest carries the sparse set of fields to change on one row.
// RowIndex is a 1-based sheet row number captured from an earlier read; it
// goes stale if the sheet's row ordering changes underneath the caller, and
// no re-validation is attempted here.
type UpdateMediaRequest struct {
	RowIndex    int    `json:"rowIndex" validate:"required"`
	MediaType   string `json:"mediaType" validate:"required"`
	Name        string `json:"name,omitempty"`
	Watched     string `json:"watched,omitempty"`
	WatchedTill string `json:"watchedTill,omitempty"`
}

// UpdateMedia issues one targeted cell update per changed field. All
// updates for a request run concurrently and are awaited together; any
// failure fails the whole request. For movie-like categories a watched
// change also rewrites watched_till to its sentinel in the same request;
// the two cells are never allowed to drift apart.
func (m MediaManager) UpdateMedia(ctx context.Context, req UpdateMediaRequest) error {
	t, cfg, err := parseType(req.MediaType)
	if err != nil {
		return err
	}

	if req.RowIndex <= 1 {
		return errors.New("rowIndex must address a data row")
	}

	type cellWrite struct {
		column string
		value  string
	}

	writes := []cellWrite{}
	if req.Name != "" {
		writes = append(writes, cellWrite{column: cfg.NameColumn(), value: req.Name})
	}
	if req.Watched != "" {
		writes = append(writes, cellWrite{column: "watched", value: media.FormatWatched(media.ParseWatched(req.Watched))})
		if t.IsMovie() {
			sentinel := "Not Watched"
			if media.ParseWatched(req.Watched) {
				sentinel = "Watched"
			}
			writes = append(writes, cellWrite{column: "watched_till", value: sentinel})
		}
	}
	if req.WatchedTill != "" && !t.IsMovie() {
		writes = append(writes, cellWrite{column: "watched_till", value: req.WatchedTill})
	}

	if len(writes) == 0 {
		return errors.New("no fields to update")
	}

	p := pool.New().WithErrors().WithContext(ctx)
	for _, w := range writes {
		cell, err := cfg.CellAddress(w.column, req.RowIndex)
		if err != nil {
			return err
		}

		value := w.value
		p.Go(func(ctx context.Context) error {
			return m.store.UpdateCell(ctx, cell, value)
		})
	}

	return p.Wait()
}
