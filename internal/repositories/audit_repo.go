package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxAudit is one submitted (or rejected) write against the contract.
// The audit trail records submissions, never campaign state: the chain
// stays the only source of truth for balances.
type TxAudit struct {
	ID              uuid.UUID
	Signer          string
	Operation       string // donate / create_campaign
	CampaignID      *int
	AmountBaseUnits *string
	TxHash          *string
	Status          string // submitted / failed
	Error           *string
}

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Record(ctx context.Context, a TxAudit) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tx_audit (id, signer, operation, campaign_id, amount_base_units, tx_hash, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.Signer, a.Operation, a.CampaignID, a.AmountBaseUnits, a.TxHash, a.Status, a.Error)
	return err
}

// ListBySigner returns the signer's recent submissions, newest first.
func (r *AuditRepo) ListBySigner(ctx context.Context, signer string, limit int) ([]TxAudit, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, signer, operation, campaign_id, amount_base_units, tx_hash, status, error
		FROM tx_audit
		WHERE signer = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, signer, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TxAudit
	for rows.Next() {
		var a TxAudit
		if err := rows.Scan(&a.ID, &a.Signer, &a.Operation, &a.CampaignID, &a.AmountBaseUnits, &a.TxHash, &a.Status, &a.Error); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
