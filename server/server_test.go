package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"entracker/pkg/manager"
	"entracker/pkg/media"
	"entracker/pkg/oracle"
	"entracker/pkg/sheets"
	"entracker/pkg/tmdb"
)

type stubTMDB struct {
	searchResults []tmdb.SearchResult
	searchErr     error
	details       *tmdb.Details
	detailsErr    error
}

func (s *stubTMDB) SearchMedia(ctx context.Context, kind tmdb.Kind, query string) ([]tmdb.SearchResult, error) {
	return s.searchResults, s.searchErr
}

func (s *stubTMDB) SearchCollection(ctx context.Context, query string) ([]tmdb.SearchResult, error) {
	return nil, nil
}

func (s *stubTMDB) Details(ctx context.Context, kind tmdb.Kind, id int) (*tmdb.Details, error) {
	return s.details, s.detailsErr
}

func (s *stubTMDB) Collection(ctx context.Context, id int) (*tmdb.Collection, error) {
	return nil, errors.New("not stubbed")
}

type stubOracle struct {
	fields media.Fields
	err    error
}

func (s *stubOracle) Synthesize(ctx context.Context, t media.Type, name string) (media.Fields, error) {
	return s.fields, s.err
}

type stubStore struct {
	values    [][]string
	readErr   error
	appendErr error
}

func (s *stubStore) ReadAll(ctx context.Context, readRange string) ([][]string, error) {
	return s.values, s.readErr
}

func (s *stubStore) Append(ctx context.Context, appendRange string, rows [][]string) error {
	return s.appendErr
}

func (s *stubStore) UpdateCell(ctx context.Context, cell string, value string) error {
	return nil
}

func (s *stubStore) UpdateRow(ctx context.Context, rowRange string, values []string) error {
	return nil
}

func newTestServer(t *stubTMDB, o *stubOracle, store *stubStore) Server {
	return New(zap.NewNop().Sugar(), manager.New(t, o, store))
}

var movieHeader = []string{"Movies Name", "Franchise", "Watched Till", "Next Part", "Expected On", "Update", "Watched", "Release Date"}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(&stubTMDB{}, &stubOracle{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	s.Healthz().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("content-type"))
}

func TestServer_SearchMedia(t *testing.T) {
	t.Run("missing params", func(t *testing.T) {
		s := newTestServer(&stubTMDB{}, &stubOracle{}, &stubStore{})

		req := httptest.NewRequest(http.MethodGet, "/api/search-tmdb?mediaType=movie", nil)
		rr := httptest.NewRecorder()
		s.SearchMedia().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "mediaType and name are required.", resp["error"])
	})

	t.Run("results", func(t *testing.T) {
		s := newTestServer(&stubTMDB{
			searchResults: []tmdb.SearchResult{{ID: 27205, Name: "Inception", ReleaseDate: "2010-07-16"}},
		}, &stubOracle{}, &stubStore{})

		req := httptest.NewRequest(http.MethodGet, "/api/search-tmdb?mediaType=movie&name=Inception", nil)
		rr := httptest.NewRecorder()
		s.SearchMedia().ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data []tmdb.SearchResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Inception", resp.Data[0].Name)
	})

	t.Run("upstream failure", func(t *testing.T) {
		s := newTestServer(&stubTMDB{searchErr: tmdb.ErrUpstream}, &stubOracle{}, &stubStore{})

		req := httptest.NewRequest(http.MethodGet, "/api/search-tmdb?mediaType=movie&name=Inception", nil)
		rr := httptest.NewRecorder()
		s.SearchMedia().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestServer_AddMedia(t *testing.T) {
	t.Run("missing required fields", func(t *testing.T) {
		s := newTestServer(&stubTMDB{}, &stubOracle{}, &stubStore{})

		req := httptest.NewRequest(http.MethodPost, "/add-media", strings.NewReader(`{"mediaType":"movie"}`))
		rr := httptest.NewRecorder()
		s.AddMedia().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "mediaType, tmdbId, and watched are required.", resp["error"])
	})

	t.Run("duplicate title conflicts", func(t *testing.T) {
		s := newTestServer(&stubTMDB{
			details: &tmdb.Details{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-16"},
		}, &stubOracle{}, &stubStore{
			values: [][]string{
				movieHeader,
				{"inception", "Standalone", "Watched", "No", "Available", "", "True", "2010-07-16"},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/add-media", strings.NewReader(`{"mediaType":"movie","tmdbId":27205,"watched":"True"}`))
		rr := httptest.NewRecorder()
		s.AddMedia().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("created", func(t *testing.T) {
		s := newTestServer(&stubTMDB{
			details: &tmdb.Details{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-16"},
		}, &stubOracle{fields: media.Fields{NextPart: "No"}}, &stubStore{
			values: [][]string{movieHeader},
		})

		req := httptest.NewRequest(http.MethodPost, "/add-media", strings.NewReader(`{"mediaType":"movie","tmdbId":27205,"watched":"True"}`))
		rr := httptest.NewRecorder()
		s.AddMedia().ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp manager.AddMediaResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Media added successfully!", resp.Message)
		assert.Equal(t, "Inception", resp.Data["movies_name"])
	})

	t.Run("malformed oracle output maps to 500", func(t *testing.T) {
		s := newTestServer(&stubTMDB{
			details: &tmdb.Details{ID: 27205, Title: "Inception"},
		}, &stubOracle{err: oracle.ErrMalformedOutput}, &stubStore{
			values: [][]string{movieHeader},
		})

		req := httptest.NewRequest(http.MethodPost, "/add-media", strings.NewReader(`{"mediaType":"movie","tmdbId":27205,"watched":"True"}`))
		rr := httptest.NewRecorder()
		s.AddMedia().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestServer_GetMedia(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		s := newTestServer(&stubTMDB{}, &stubOracle{}, &stubStore{})

		req := httptest.NewRequest(http.MethodGet, "/get-media/music", nil)
		req = mux.SetURLVars(req, map[string]string{"mediaType": "music"})
		rr := httptest.NewRecorder()
		s.GetMedia().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rows with index", func(t *testing.T) {
		s := newTestServer(&stubTMDB{}, &stubOracle{}, &stubStore{
			values: [][]string{
				movieHeader,
				{"Inception", "Standalone", "Watched", "No", "Available", "", "True", "2010-07-16"},
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/get-media/movie", nil)
		req = mux.SetURLVars(req, map[string]string{"mediaType": "movie"})
		rr := httptest.NewRecorder()
		s.GetMedia().ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Inception", resp.Data[0]["movies_name"])
		assert.Equal(t, float64(2), resp.Data[0]["row_index"])
	})

	t.Run("store failure", func(t *testing.T) {
		s := newTestServer(&stubTMDB{}, &stubOracle{}, &stubStore{readErr: sheets.ErrUnavailable})

		req := httptest.NewRequest(http.MethodGet, "/get-media/movie", nil)
		req = mux.SetURLVars(req, map[string]string{"mediaType": "movie"})
		rr := httptest.NewRecorder()
		s.GetMedia().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestServer_ListFranchises(t *testing.T) {
	t.Run("non-movie type rejected", func(t *testing.T) {
		s := newTestServer(&stubTMDB{}, &stubOracle{}, &stubStore{})

		req := httptest.NewRequest(http.MethodGet, "/api/franchises/series", nil)
		req = mux.SetURLVars(req, map[string]string{"mediaType": "series"})
		rr := httptest.NewRecorder()
		s.ListFranchises().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestServer_GetFranchise(t *testing.T) {
	t.Run("none stored is 404", func(t *testing.T) {
		s := newTestServer(&stubTMDB{}, &stubOracle{}, &stubStore{values: [][]string{movieHeader}})

		req := httptest.NewRequest(http.MethodGet, "/api/franchise/movie/Star%20Wars", nil)
		req = mux.SetURLVars(req, map[string]string{"mediaType": "movie", "name": "Star Wars"})
		rr := httptest.NewRecorder()
		s.GetFranchise().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestServer_GetDetails(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		s := newTestServer(&stubTMDB{searchResults: []tmdb.SearchResult{}}, &stubOracle{}, &stubStore{})

		req := httptest.NewRequest(http.MethodGet, "/api/details/movie/Nothing", nil)
		req = mux.SetURLVars(req, map[string]string{"mediaType": "movie", "name": "Nothing"})
		rr := httptest.NewRecorder()
		s.GetDetails().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestServer_UpdateMedia(t *testing.T) {
	t.Run("missing required fields", func(t *testing.T) {
		s := newTestServer(&stubTMDB{}, &stubOracle{}, &stubStore{})

		req := httptest.NewRequest(http.MethodPut, "/update-media", strings.NewReader(`{"name":"x"}`))
		rr := httptest.NewRecorder()
		s.UpdateMedia().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "rowIndex and mediaType are required.", resp["error"])
	})

	t.Run("successful update", func(t *testing.T) {
		s := newTestServer(&stubTMDB{}, &stubOracle{}, &stubStore{})

		req := httptest.NewRequest(http.MethodPut, "/update-media", strings.NewReader(`{"rowIndex":4,"mediaType":"movie","watched":"True"}`))
		rr := httptest.NewRecorder()
		s.UpdateMedia().ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Update successful!", resp["message"])
	})
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid media type", manager.ErrInvalidMediaType, http.StatusBadRequest},
		{"already exists", manager.ErrAlreadyExists, http.StatusConflict},
		{"not found", manager.ErrNotFound, http.StatusNotFound},
		{"tmdb not found", tmdb.ErrNotFound, http.StatusNotFound},
		{"tmdb upstream", tmdb.ErrUpstream, http.StatusInternalServerError},
		{"oracle unavailable", oracle.ErrUnavailable, http.StatusInternalServerError},
		{"malformed oracle output", oracle.ErrMalformedOutput, http.StatusInternalServerError},
		{"store unavailable", sheets.ErrUnavailable, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromError(tt.err))
		})
	}
}
