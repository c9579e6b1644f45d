package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// RawCampaign is one record as the gateway returns it. Numeric fields
// arrive in whatever representation the gateway's ABI decoder chose for
// uint256 — decimal string, 0x-hex string, or bare JSON number — so they
// are kept as raw tokens until normalization.
type RawCampaign struct {
	Owner           string            `json:"owner"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Target          json.RawMessage   `json:"target"`
	Deadline        json.RawMessage   `json:"deadline"`
	AmountCollected json.RawMessage   `json:"amountCollected"`
	Image           string            `json:"image"`
	Donators        []string          `json:"donators"`
	Donations       []json.RawMessage `json:"donations"`
}

// parseUint256 coerces a raw JSON token into an exact integer. Decimal
// strings, 0x-hex strings, and integral JSON numbers are accepted;
// anything that would need a float on the way in is rejected.
func parseUint256(raw json.RawMessage) (*big.Int, error) {
	tok := bytes.TrimSpace(raw)
	if len(tok) == 0 || bytes.Equal(tok, []byte("null")) {
		return nil, fmt.Errorf("missing numeric value")
	}

	s := string(tok)
	if tok[0] == '"' {
		var inner string
		if err := json.Unmarshal(tok, &inner); err != nil {
			return nil, fmt.Errorf("bad numeric string: %w", err)
		}
		s = strings.TrimSpace(inner)
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	if s == "" {
		return nil, fmt.Errorf("empty numeric value")
	}

	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}
