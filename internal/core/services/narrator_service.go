package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NarratorConfig holds the external narrative-generation endpoint settings
type NarratorConfig struct {
	URL    string
	APIKey string
}

// NarratorService is the client for the external prompt/completion
// collaborator that turns inventory snapshots into prose. The contract is
// opaque: JSON-ish strings in, prose out.
type NarratorService struct {
	config NarratorConfig
	client *http.Client
}

// NewNarratorService creates a new narrator client. An empty URL disables
// the collaborator and report summaries stay rule-based.
func NewNarratorService(cfg NarratorConfig) *NarratorService {
	return &NarratorService{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// IsEnabled reports whether a narrator endpoint is configured
func (s *NarratorService) IsEnabled() bool {
	return s.config.URL != ""
}

// narratorRequest is the payload sent to the narrator endpoint
type narratorRequest struct {
	ProductsData string `json:"products_data"`
	LoansData    string `json:"loans_data"`
}

// narratorResponse is the prose returned by the narrator endpoint
type narratorResponse struct {
	GeneralSummary string `json:"general_summary"`
}

// GenerateSummary posts the inventory and active-loan snapshots (as JSON
// strings) to the narrator and returns its executive summary.
func (s *NarratorService) GenerateSummary(ctx context.Context, productsJSON, loansJSON string) (string, error) {
	if !s.IsEnabled() {
		return "", fmt.Errorf("narrator not configured")
	}

	payload, err := json.Marshal(narratorRequest{
		ProductsData: productsJSON,
		LoansData:    loansJSON,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("narrator returned status %d: %s", resp.StatusCode, string(body))
	}

	var out narratorResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	return out.GeneralSummary, nil
}
