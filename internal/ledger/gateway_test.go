package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/apperrors"
)

func testGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewGateway(GatewayOptions{
		BaseURL:         srv.URL,
		ChainID:         11155111,
		ContractAddress: "0x95Eb935CbbB7bd45E94bf6B42A38cb1C3Be3F13e",
		SecretKey:       "test-secret",
	}, zap.NewNop())
}

func TestGetCampaigns(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contract/11155111/0x95Eb935CbbB7bd45E94bf6B42A38cb1C3Be3F13e/read" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-secret-key") != "test-secret" {
			t.Error("missing secret key header")
		}

		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["method"] != "getCampaigns" {
			t.Errorf("method = %v", req["method"])
		}

		_, _ = w.Write([]byte(`{"result":[
			{"owner":"0xabc","title":"A","description":"d","target":"1000","deadline":"200","amountCollected":"10","image":"","donators":[],"donations":[]}
		]}`))
	})

	records, err := g.GetCampaigns(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Owner != "0xabc" {
		t.Errorf("records = %+v", records)
	}
}

func TestGetCampaignsEmptyChain(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":[]}`))
	})

	records, err := g.GetCampaigns(context.Background())
	if err != nil {
		t.Fatalf("empty chain must not be an error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records", len(records))
	}
}

func TestGetCampaignsFailureIsReadError(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := g.GetCampaigns(context.Background())
	var readErr *apperrors.ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error = %v, want ReadError", err)
	}
}

func TestDonateToCampaign(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contract/11155111/0x95Eb935CbbB7bd45E94bf6B42A38cb1C3Be3F13e/write" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req struct {
			Method string `json:"method"`
			Params []any  `json:"params"`
			Value  string `json:"value"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Method != "donateToCampaign" {
			t.Errorf("method = %s", req.Method)
		}
		if len(req.Params) != 1 || req.Params[0] != float64(3) {
			t.Errorf("params = %v", req.Params)
		}
		if req.Value != "500000000000000000" {
			t.Errorf("value = %s", req.Value)
		}

		_, _ = w.Write([]byte(`{"result":{"transactionHash":"0xdeadbeef"}}`))
	})

	hash, err := g.DonateToCampaign(context.Background(), 3, big.NewInt(500000000000000000))
	if err != nil {
		t.Fatal(err)
	}
	if hash != "0xdeadbeef" {
		t.Errorf("hash = %s", hash)
	}
}

func TestCreateCampaign(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Method != "createCampaign" {
			t.Errorf("method = %s", req.Method)
		}
		if len(req.Params) != 6 {
			t.Fatalf("params = %v", req.Params)
		}
		if req.Params[0] != "0xowner" || req.Params[3] != "1000000000000000000" {
			t.Errorf("params = %v", req.Params)
		}

		_, _ = w.Write([]byte(`{"result":{"transactionHash":"0xfeed"}}`))
	})

	hash, err := g.CreateCampaign(context.Background(), "0xowner", "T", "D", big.NewInt(1000000000000000000), 1893456000, "img")
	if err != nil {
		t.Fatal(err)
	}
	if hash != "0xfeed" {
		t.Errorf("hash = %s", hash)
	}
}

func TestWriteFailureIsTransactionError(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"http error", "boom", http.StatusBadGateway},
		{"gateway-level error", `{"error":"execution reverted"}`, http.StatusOK},
		{"missing hash", `{"result":{}}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := g.DonateToCampaign(context.Background(), 0, big.NewInt(1))
			var txErr *apperrors.TransactionError
			if !errors.As(err, &txErr) {
				t.Fatalf("error = %v, want TransactionError", err)
			}
		})
	}
}

func TestClientIDHeaderWhenNoSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-client-id") != "public-id" {
			t.Error("missing client id header")
		}
		if r.Header.Get("x-secret-key") != "" {
			t.Error("secret key header must be absent")
		}
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))
	defer srv.Close()

	g := NewGateway(GatewayOptions{
		BaseURL:         srv.URL,
		ChainID:         1,
		ContractAddress: "0x0",
		ClientID:        "public-id",
	}, zap.NewNop())

	if _, err := g.GetCampaigns(context.Background()); err != nil {
		t.Fatal(err)
	}
}
