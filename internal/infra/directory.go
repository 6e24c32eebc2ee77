package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// DirectoryRecord is what the external customer/contract directory returns
// for one customer: identity plus the two negotiated discount percentages.
type DirectoryRecord struct {
	DirectoryID      string          `json:"directory_id"`
	Name             string          `json:"name"`
	Email            *string         `json:"email,omitempty"`
	ContractDiscount decimal.Decimal `json:"contract_discount"`
	CustomerDiscount decimal.Decimal `json:"customer_discount"`
}

// DirectoryClient is an HTTP client for the customer/contract directory.
// The directory is an external collaborator: the engine never calls it; the
// customer service does, guarded by a circuit breaker, and caches results in
// the local customers table.
type DirectoryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewDirectoryClient(baseURL string) *DirectoryClient {
	return &DirectoryClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup fetches a customer record with its current discount terms.
func (c *DirectoryClient) Lookup(ctx context.Context, directoryID string) (*DirectoryRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/customers/"+directoryID, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("directory: customer %s not found", directoryID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory: returned %d", resp.StatusCode)
	}

	var record DirectoryRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("directory: decode response: %w", err)
	}
	return &record, nil
}
