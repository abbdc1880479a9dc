package database

import (
	"context"
	"database/sql"
	"errors"

	"nftmarket/walletbridge/internal/models"
)

// ConnectionStore persists the last-connected-wallet record. The
// record is a pair (last wallet, auto-connect flag) that is always
// written and cleared as a unit; readers never see one field without
// the other. Store failures are non-fatal to callers: the orchestrator
// logs them and carries on in memory.
type ConnectionStore interface {
	// WriteRecord replaces the record with rec
	WriteRecord(ctx context.Context, rec models.ConnectionRecord) error

	// ReadRecord returns the record and whether one exists
	ReadRecord(ctx context.Context) (models.ConnectionRecord, bool, error)

	// ClearRecord removes the record; clearing an absent record is not
	// an error
	ClearRecord(ctx context.Context) error
}

// The record lives in a single row, so the write-both-or-neither
// guarantee comes from row atomicity rather than a transaction.

// WriteRecord upserts the connection record
func (db *DB) WriteRecord(ctx context.Context, rec models.ConnectionRecord) error {
	query := `
		INSERT INTO wallet_connection (id, last_wallet, auto_connect, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET last_wallet = EXCLUDED.last_wallet,
		    auto_connect = EXCLUDED.auto_connect,
		    updated_at = NOW()
	`
	_, err := db.ExecContext(ctx, query, rec.LastWallet, rec.AutoConnect)
	return err
}

// ReadRecord fetches the connection record
func (db *DB) ReadRecord(ctx context.Context) (models.ConnectionRecord, bool, error) {
	var rec models.ConnectionRecord
	query := `SELECT last_wallet, auto_connect FROM wallet_connection WHERE id = 1`
	err := db.GetContext(ctx, &rec, query)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ConnectionRecord{}, false, nil
	}
	if err != nil {
		return models.ConnectionRecord{}, false, err
	}
	return rec, true, nil
}

// ClearRecord deletes the connection record
func (db *DB) ClearRecord(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `DELETE FROM wallet_connection WHERE id = 1`)
	return err
}
