package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/deploy"
)

// ContentStoreVerifier pins the source to an IPFS-compatible content
// store. It cannot tie source to bytecode; its guarantee is only that this
// exact source existed and is immutably addressable. Last resort by
// design.
type ContentStoreVerifier struct {
	apiURL string
	client *http.Client
}

// NewContentStoreVerifier creates a ContentStoreVerifier against an IPFS
// HTTP API endpoint.
func NewContentStoreVerifier(apiURL string, timeout time.Duration) *ContentStoreVerifier {
	return &ContentStoreVerifier{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the strategy identifier.
func (v *ContentStoreVerifier) Name() string { return "content-store-fallback" }

// Confidence returns the strategy's confidence tag.
func (v *ContentStoreVerifier) Confidence() string { return ConfidenceArchived }

type contentStoreResponse struct {
	Hash string `json:"Hash"`
	Name string `json:"Name"`
}

// Submit adds the source to the content store and returns its content
// identifier as an ipfs URI. An empty identifier in the response is an
// error: a verification reference is never synthesized.
func (v *ContentStoreVerifier) Submit(ctx context.Context, record *deploy.DeploymentRecord, source string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", record.Address+".sol")
	if err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write([]byte(source)); err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		v.apiURL+"/api/v0/add?pin=true", &buf)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("content store: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("reading store response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("content store returned %d", resp.StatusCode)
	}

	var parsed contentStoreResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding store response: %w", err)
	}
	if parsed.Hash == "" {
		return "", fmt.Errorf("content store returned no content identifier")
	}

	return "ipfs://" + parsed.Hash, nil
}
