package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/deploy"
)

// ExplorerVerifier submits source to an etherscan-compatible block
// explorer verification API. Success ties the published source to the
// on-chain bytecode, the strongest guarantee in the chain.
type ExplorerVerifier struct {
	apiURL  string
	webURL  string
	apiKey  string
	chainID int64
	client  *http.Client
}

// NewExplorerVerifier creates an ExplorerVerifier for one network's
// explorer. apiURL is the explorer's API endpoint, webURL its public UI
// base used to build the reference link.
func NewExplorerVerifier(apiURL, webURL, apiKey string, chainID int64, timeout time.Duration) *ExplorerVerifier {
	return &ExplorerVerifier{
		apiURL:  strings.TrimRight(apiURL, "/"),
		webURL:  strings.TrimRight(webURL, "/"),
		apiKey:  apiKey,
		chainID: chainID,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the strategy identifier.
func (v *ExplorerVerifier) Name() string { return "explorer" }

// Confidence returns the strategy's confidence tag.
func (v *ExplorerVerifier) Confidence() string { return ConfidenceVerified }

// explorerResponse is the etherscan-style API envelope.
type explorerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// Submit posts the source for verification. The etherscan contract is
// status "1" for accepted; anything else, including HTTP success with
// status "0" (rate limit, already verified pending, bad key), is an error
// that advances the fallback chain.
func (v *ExplorerVerifier) Submit(ctx context.Context, record *deploy.DeploymentRecord, source string) (string, error) {
	form := url.Values{
		"module":          {"contract"},
		"action":          {"verifysourcecode"},
		"contractaddress": {record.Address},
		"sourceCode":      {source},
		"chainid":         {fmt.Sprintf("%d", v.chainID)},
		"codeformat":      {"solidity-single-file"},
	}
	if v.apiKey != "" {
		form.Set("apikey", v.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.apiURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("explorer api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("reading explorer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("explorer api returned %d", resp.StatusCode)
	}

	var parsed explorerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding explorer response: %w", err)
	}
	if parsed.Status != "1" {
		return "", fmt.Errorf("explorer rejected submission: %s: %s", parsed.Message, parsed.Result)
	}

	return fmt.Sprintf("%s/address/%s#code", v.webURL, record.Address), nil
}
