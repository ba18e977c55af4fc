// Package sheets adapts the spreadsheet's row-oriented storage into a
// small table-store interface: read a range, append rows in one batch,
// overwrite a cell or a row.
package sheets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"entracker/config"
)

// ErrUnavailable indicates the spreadsheet service rejected or never
// received a call (auth or network failure).
var ErrUnavailable = errors.New("sheet store unavailable")

// Store is the row storage the reconciliation engine writes through.
type Store interface {
	// ReadAll returns every row in the range; row 0 is the header.
	ReadAll(ctx context.Context, readRange string) ([][]string, error)
	// Append adds rows to the end of the addressed table in a single batch
	// call. Callers rely on the batch being all-or-nothing at this boundary;
	// never split it into per-row appends.
	Append(ctx context.Context, appendRange string, rows [][]string) error
	// UpdateCell overwrites one cell addressed in A1 notation.
	UpdateCell(ctx context.Context, cell string, value string) error
	// UpdateRow overwrites a row starting at the given A1 address.
	UpdateRow(ctx context.Context, rowRange string, values []string) error
}

// Google is the Store implementation backed by the Google Sheets values API.
type Google struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// New builds a sheet store. Credentials come from the base64-encoded
// service-account JSON when configured, else from a key file on disk.
func New(ctx context.Context, cfg config.Sheets) (*Google, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("decode sheet credentials: %w", err)
		}

		creds, err := google.CredentialsFromJSON(ctx, raw, gsheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse sheet credentials: %w", err)
		}

		opts = append(opts, option.WithTokenSource(creds.TokenSource))
	} else {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(gsheets.SpreadsheetsScope))
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Google{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
	}, nil
}

func (g *Google) ReadAll(ctx context.Context, readRange string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, toCellString(cell))
		}
		rows = append(rows, cells)
	}

	return rows, nil
}

func (g *Google) Append(ctx context.Context, appendRange string, rows [][]string) error {
	_, err := g.svc.Spreadsheets.Values.
		Append(g.spreadsheetID, appendRange, valueRange(rows)).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (g *Google) UpdateCell(ctx context.Context, cell string, value string) error {
	return g.UpdateRow(ctx, cell, []string{value})
}

func (g *Google) UpdateRow(ctx context.Context, rowRange string, values []string) error {
	_, err := g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, rowRange, valueRange([][]string{values})).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func valueRange(rows [][]string) *gsheets.ValueRange {
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		values = append(values, cells)
	}
	return &gsheets.ValueRange{Values: values}
}

func toCellString(cell any) string {
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprint(cell)
}
