// Package ledger is the boundary to the crowdfunding contract. All chain
// access goes through a hosted contract gateway: one view call to list
// campaigns and two state-changing calls, authenticated with either a
// public client id or a privileged secret key.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/apperrors"
)

const (
	methodGetCampaigns     = "getCampaigns"
	methodCreateCampaign   = "createCampaign"
	methodDonateToCampaign = "donateToCampaign"
)

// Gateway talks to the contract gateway over HTTP. Chain id and contract
// address are injected from config; nothing here is hardwired to one
// deployment.
type Gateway struct {
	baseURL    string
	chainID    int64
	contract   string
	clientID   string
	secretKey  string
	httpClient *http.Client
	log        *zap.Logger
}

type GatewayOptions struct {
	BaseURL         string
	ChainID         int64
	ContractAddress string
	// Exactly one of ClientID / SecretKey is set; config enforces it.
	ClientID  string
	SecretKey string
	Timeout   time.Duration
}

func NewGateway(opts GatewayOptions, log *zap.Logger) *Gateway {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		chainID:    opts.ChainID,
		contract:   opts.ContractAddress,
		clientID:   opts.ClientID,
		secretKey:  opts.SecretKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type callRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	// Value is attached native currency in base units, decimal string.
	// Only meaningful for payable writes.
	Value string `json:"value,omitempty"`
}

type callResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

type writeResult struct {
	TransactionHash string `json:"transactionHash"`
}

// GetCampaigns issues the single view call and returns the raw records
// in contract order. View only: no gas, no side effects.
func (g *Gateway) GetCampaigns(ctx context.Context) ([]RawCampaign, error) {
	body, err := g.call(ctx, "read", callRequest{Method: methodGetCampaigns, Params: []any{}})
	if err != nil {
		return nil, &apperrors.ReadError{Err: err}
	}

	var records []RawCampaign
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &apperrors.ReadError{Err: fmt.Errorf("decode campaign list: %w", err)}
	}
	return records, nil
}

// CreateCampaign submits the creation write and returns the transaction
// hash once the gateway reports confirmation.
func (g *Gateway) CreateCampaign(ctx context.Context, owner, title, description string, target *big.Int, deadline int64, image string) (string, error) {
	req := callRequest{
		Method: methodCreateCampaign,
		Params: []any{owner, title, description, target.String(), deadline, image},
	}
	return g.submit(ctx, methodCreateCampaign, req)
}

// DonateToCampaign submits a value transfer to the campaign at the given
// positional id. The donation amount rides as attached value, not a
// call parameter.
func (g *Gateway) DonateToCampaign(ctx context.Context, campaignID int, value *big.Int) (string, error) {
	req := callRequest{
		Method: methodDonateToCampaign,
		Params: []any{campaignID},
		Value:  value.String(),
	}
	return g.submit(ctx, methodDonateToCampaign, req)
}

func (g *Gateway) submit(ctx context.Context, op string, req callRequest) (string, error) {
	body, err := g.call(ctx, "write", req)
	if err != nil {
		return "", &apperrors.TransactionError{Op: op, Err: err}
	}

	var res writeResult
	if err := json.Unmarshal(body, &res); err != nil {
		return "", &apperrors.TransactionError{Op: op, Err: fmt.Errorf("decode result: %w", err)}
	}
	if res.TransactionHash == "" {
		return "", &apperrors.TransactionError{Op: op, Err: fmt.Errorf("gateway returned no transaction hash")}
	}
	return res.TransactionHash, nil
}

func (g *Gateway) call(ctx context.Context, kind string, reqBody callRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/contract/%d/%s/%s", g.baseURL, g.chainID, g.contract, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.secretKey != "" {
		req.Header.Set("x-secret-key", g.secretKey)
	} else {
		req.Header.Set("x-client-id", g.clientID)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway unavailable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out callResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("gateway error: %s", out.Error)
	}
	return out.Result, nil
}
