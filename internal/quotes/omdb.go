package quotes

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const defaultOMDbBaseURL = "https://www.omdbapi.com"

// MovieResult is one movie search hit or detail lookup, reshaped from OMDb's
// capitalized payload into the dashboard's field names.
type MovieResult struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Poster      string   `json:"poster,omitempty"`
	Plot        string   `json:"plot,omitempty"`
	ReleaseYear int      `json:"releaseYear,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Cast        []string `json:"cast"`
	Director    string   `json:"director,omitempty"`
	Runtime     string   `json:"runtime,omitempty"`
}

// OMDbClient fetches movie metadata from the OMDb API.
type OMDbClient struct {
	baseURL string
	apiKey  string
	client  httpDoer
}

// NewOMDbClient creates a client; the API key comes from configuration.
func NewOMDbClient(apiKey string) *OMDbClient {
	return &OMDbClient{baseURL: defaultOMDbBaseURL, apiKey: apiKey, client: defaultClient()}
}

type omdbMovie struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	ImdbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Poster     string `json:"Poster"`
	Plot       string `json:"Plot"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	ImdbRating string `json:"imdbRating"`
	Actors     string `json:"Actors"`
	Director   string `json:"Director"`
	Runtime    string `json:"Runtime"`
}

type omdbSearchResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Search   []struct {
		ImdbID string `json:"imdbID"`
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		Poster string `json:"Poster"`
	} `json:"Search"`
}

// omdbNA clears OMDb's "N/A" placeholder values.
func omdbNA(s string) string {
	if s == "N/A" {
		return ""
	}
	return s
}

func splitList(s string) []string {
	s = omdbNA(s)
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ", ")
	return parts
}

// Search returns movies matching the title query.
func (c *OMDbClient) Search(ctx context.Context, query string) ([]MovieResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("Search: query is required")
	}

	addr := fmt.Sprintf("%s/?s=%s&type=movie&apikey=%s", c.baseURL, url.QueryEscape(query), url.QueryEscape(c.apiKey))

	var payload omdbSearchResponse
	if err := getJSON(ctx, c.client, addr, &payload); err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	if payload.Response == "False" {
		// "Movie not found!" is an empty result, not a failure.
		if strings.Contains(payload.Error, "not found") {
			return []MovieResult{}, nil
		}
		return nil, fmt.Errorf("Search: omdb: %s", payload.Error)
	}

	results := make([]MovieResult, 0, len(payload.Search))
	for _, hit := range payload.Search {
		m := MovieResult{
			ID:     hit.ImdbID,
			Title:  hit.Title,
			Poster: omdbNA(hit.Poster),
			Cast:   []string{},
		}
		if year, err := strconv.Atoi(omdbNA(hit.Year)); err == nil {
			m.ReleaseYear = year
		}
		results = append(results, m)
	}
	return results, nil
}

// Detail returns full metadata for one IMDb ID.
func (c *OMDbClient) Detail(ctx context.Context, imdbID string) (*MovieResult, error) {
	if strings.TrimSpace(imdbID) == "" {
		return nil, fmt.Errorf("Detail: imdb id is required")
	}

	addr := fmt.Sprintf("%s/?i=%s&plot=full&apikey=%s", c.baseURL, url.QueryEscape(imdbID), url.QueryEscape(c.apiKey))

	var payload omdbMovie
	if err := getJSON(ctx, c.client, addr, &payload); err != nil {
		return nil, fmt.Errorf("Detail: %w", err)
	}
	if payload.Response == "False" {
		return nil, fmt.Errorf("Detail: omdb: %s", payload.Error)
	}

	m := &MovieResult{
		ID:       payload.ImdbID,
		Title:    payload.Title,
		Poster:   omdbNA(payload.Poster),
		Plot:     omdbNA(payload.Plot),
		Genres:   splitList(payload.Genre),
		Cast:     splitList(payload.Actors),
		Director: omdbNA(payload.Director),
		Runtime:  omdbNA(payload.Runtime),
	}
	if year, err := strconv.Atoi(omdbNA(payload.Year)); err == nil {
		m.ReleaseYear = year
	}
	if rating, err := strconv.ParseFloat(omdbNA(payload.ImdbRating), 64); err == nil {
		m.Rating = rating
	}
	return m, nil
}
