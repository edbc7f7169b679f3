package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medbook/config"
)

// ErrGatewayRequest is returned when the gateway answers with a non-2xx status
var ErrGatewayRequest = errors.New("gateway request failed")

// ConnectionState is the WhatsApp session state of an instance
type ConnectionState struct {
	Instance string `json:"instance"`
	State    string `json:"state"` // open, connecting, close
}

// QRCode is the pairing payload returned while an instance is connecting
type QRCode struct {
	Instance    string `json:"instance"`
	PairingCode string `json:"pairing_code,omitempty"`
	Code        string `json:"code,omitempty"`
	Base64      string `json:"base64,omitempty"`
}

// EvolutionClient talks to an Evolution API server
type EvolutionClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewEvolutionClient(cfg config.GatewayConfig) *EvolutionClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EvolutionClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// ConnectionState fetches GET /instance/connectionState/{instance}
func (c *EvolutionClient) ConnectionState(ctx context.Context, instance string) (*ConnectionState, error) {
	var body struct {
		Instance struct {
			InstanceName string `json:"instanceName"`
			State        string `json:"state"`
		} `json:"instance"`
	}
	if err := c.get(ctx, "/instance/connectionState/"+url.PathEscape(instance), &body); err != nil {
		return nil, err
	}

	name := body.Instance.InstanceName
	if name == "" {
		name = instance
	}
	return &ConnectionState{Instance: name, State: body.Instance.State}, nil
}

// Connect fetches GET /instance/connect/{instance}, which returns a fresh QR code
func (c *EvolutionClient) Connect(ctx context.Context, instance string) (*QRCode, error) {
	var body struct {
		PairingCode string `json:"pairingCode"`
		Code        string `json:"code"`
		Base64      string `json:"base64"`
	}
	if err := c.get(ctx, "/instance/connect/"+url.PathEscape(instance), &body); err != nil {
		return nil, err
	}

	return &QRCode{
		Instance:    instance,
		PairingCode: body.PairingCode,
		Code:        body.Code,
		Base64:      body.Base64,
	}, nil
}

func (c *EvolutionClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call gateway %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrGatewayRequest, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response %s: %w", path, err)
	}
	return nil
}
