package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/casepool/allocator/internal/plan"
	"github.com/casepool/allocator/internal/scoring"
)

// CasePackage is a published batch of cases plus its candidate organizations,
// as held by the case-package service.
type CasePackage struct {
	PackageID     string                        `json:"package_id"`
	Cases         []scoring.CaseItem            `json:"cases"`
	Organizations []scoring.OrganizationProfile `json:"organizations"`
}

// Client talks to the case-package persistence service. The engine reads
// packages from it and writes committed plans back as the package's
// disposal assignment.
type Client interface {
	GetCasePackage(ctx context.Context, packageID string) (*CasePackage, error)
	SaveAssignment(ctx context.Context, packageID string, p *plan.AllocationPlan) error
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("registry %s %s: %d %s", method, path, resp.StatusCode, string(data))
	}
	return data, nil
}

func (c *HTTPClient) GetCasePackage(ctx context.Context, packageID string) (*CasePackage, error) {
	data, err := c.doReq(ctx, "GET", "/packages/"+packageID, nil)
	if err != nil {
		return nil, err
	}
	var pkg CasePackage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (c *HTTPClient) SaveAssignment(ctx context.Context, packageID string, p *plan.AllocationPlan) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = c.doReq(ctx, "PUT", "/packages/"+packageID+"/assignment", body)
	return err
}
