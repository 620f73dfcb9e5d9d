package quotes

import (
	"context"
	"fmt"
	"strings"
)

const defaultMFAPIBaseURL = "https://api.mfapi.in"

// MFScheme is one mutual fund scheme listing from MFapi.in.
type MFScheme struct {
	SchemeCode int    `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
}

// MFNav is the latest NAV for a scheme.
type MFNav struct {
	SchemeCode int    `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
	Date       string `json:"date"`
	NAV        string `json:"nav"` // MFapi serves NAVs as strings
}

// MFAPIClient talks to the free MFapi.in Indian mutual fund API.
type MFAPIClient struct {
	baseURL string
	client  httpDoer
}

// NewMFAPIClient creates a client against the public MFapi.in endpoint.
func NewMFAPIClient() *MFAPIClient {
	return &MFAPIClient{baseURL: defaultMFAPIBaseURL, client: defaultClient()}
}

// Search returns schemes whose name contains query (case-insensitive),
// capped at limit results. MFapi has no server-side search, so the full
// scheme list is filtered here, same as the dashboard's proxy route did.
func (c *MFAPIClient) Search(ctx context.Context, query string, limit int) ([]MFScheme, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("Search: query is required")
	}
	if limit <= 0 {
		limit = 20
	}

	var all []MFScheme
	if err := getJSON(ctx, c.client, c.baseURL+"/mf", &all); err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}

	q := strings.ToLower(query)
	matches := make([]MFScheme, 0, limit)
	for _, scheme := range all {
		if strings.Contains(strings.ToLower(scheme.SchemeName), q) {
			matches = append(matches, scheme)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

// mfapi latest payload: {"meta": {...}, "data": [{"date": ..., "nav": ...}]}
type mfLatestResponse struct {
	Meta struct {
		SchemeCode int    `json:"scheme_code"`
		SchemeName string `json:"scheme_name"`
	} `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		NAV  string `json:"nav"`
	} `json:"data"`
}

// LatestNAV returns the most recent NAV for a scheme code.
func (c *MFAPIClient) LatestNAV(ctx context.Context, schemeCode string) (*MFNav, error) {
	if strings.TrimSpace(schemeCode) == "" {
		return nil, fmt.Errorf("LatestNAV: scheme code is required")
	}

	var payload mfLatestResponse
	addr := fmt.Sprintf("%s/mf/%s/latest", c.baseURL, schemeCode)
	if err := getJSON(ctx, c.client, addr, &payload); err != nil {
		return nil, fmt.Errorf("LatestNAV: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("LatestNAV: no NAV data for scheme %s", schemeCode)
	}

	return &MFNav{
		SchemeCode: payload.Meta.SchemeCode,
		SchemeName: payload.Meta.SchemeName,
		Date:       payload.Data[0].Date,
		NAV:        payload.Data[0].NAV,
	}, nil
}
