package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradeScope/internal/model"
)

// Store provides Postgres persistence for the trade journal.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutTradeBatch inserts or updates trade records. Cancelled attempts have no
// transaction hash, so they key on submission time instead.
func (s *Store) PutTradeBatch(ctx context.Context, trades []model.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, trade := range trades {
		batch.Queue(`
			INSERT INTO trades (
				chain_id, kind, pool_address, token_in, token_out,
				amount_in, quoted_out, min_out, deadline_ts,
				status, tx_hash, reason, submitted_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NULLIF($11,''),$12,$13,now(),now())
			ON CONFLICT (chain_id, tx_hash)
			DO UPDATE SET
				status = EXCLUDED.status,
				reason = EXCLUDED.reason,
				updated_at = now()
		`,
			int64(trade.ChainID),
			trade.Kind,
			trade.Pool,
			trade.TokenIn,
			trade.TokenOut,
			trade.AmountIn,
			trade.QuotedOut,
			trade.MinOut,
			int64(trade.Deadline),
			trade.Status,
			trade.TxHash,
			trade.Reason,
			trade.SubmittedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range trades {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
