package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/deploy"
)

// SourceIndexVerifier submits source to a sourcify-compatible
// decentralized source index. It needs no API key, which makes it the
// natural second strategy when the explorer rejects or rate-limits.
type SourceIndexVerifier struct {
	baseURL string
	chainID int64
	client  *http.Client
}

// NewSourceIndexVerifier creates a SourceIndexVerifier against the given
// index endpoint.
func NewSourceIndexVerifier(baseURL string, chainID int64, timeout time.Duration) *SourceIndexVerifier {
	return &SourceIndexVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		chainID: chainID,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the strategy identifier.
func (v *SourceIndexVerifier) Name() string { return "source-index" }

// Confidence returns the strategy's confidence tag.
func (v *SourceIndexVerifier) Confidence() string { return ConfidenceIndexed }

type sourceIndexRequest struct {
	Address string            `json:"address"`
	Chain   string            `json:"chain"`
	Files   map[string]string `json:"files"`
}

type sourceIndexResponse struct {
	Result []struct {
		Address string `json:"address"`
		Status  string `json:"status"`
	} `json:"result"`
	Error string `json:"error"`
}

// Submit posts the source for matching against the deployed bytecode. Any
// status other than a match ("perfect" or "partial") is an error; a
// contract the index has not crawled yet simply falls through to the next
// strategy.
func (v *SourceIndexVerifier) Submit(ctx context.Context, record *deploy.DeploymentRecord, source string) (string, error) {
	payload, err := json.Marshal(sourceIndexRequest{
		Address: record.Address,
		Chain:   fmt.Sprintf("%d", v.chainID),
		Files:   map[string]string{"Contract.sol": source},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/verify",
		bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("source index: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("reading index response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("source index returned %d", resp.StatusCode)
	}

	var parsed sourceIndexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding index response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("source index rejected submission: %s", parsed.Error)
	}
	if len(parsed.Result) == 0 {
		return "", fmt.Errorf("source index returned no match result")
	}
	status := parsed.Result[0].Status
	if status != "perfect" && status != "partial" {
		return "", fmt.Errorf("source index match status %q", status)
	}

	return fmt.Sprintf("%s/lookup/%s", v.baseURL, record.Address), nil
}
