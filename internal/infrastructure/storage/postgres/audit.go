package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// defaultCompressThreshold is the details size above which payloads are compressed.
const defaultCompressThreshold = 10 * 1024

// historyRow is the stored form of audit.Entry.
type historyRow struct {
	ID                id.ID           `db:"id"`
	OwnerID           id.ID           `db:"owner_id"`
	CategoryID        id.ID           `db:"category_id"`
	Action            string          `db:"action"`
	Details           json.RawMessage `db:"details"`
	DetailsCompressed []byte          `db:"details_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	Actor             string          `db:"actor"`
	CreatedAt         time.Time       `db:"created_at"`
}

// HistoryStore implements audit.Store on category_history.
type HistoryStore struct {
	txManager         *TxManager
	builder           squirrel.StatementBuilderType
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Store = (*HistoryStore)(nil)

// NewHistoryStore creates a category history store.
func NewHistoryStore(txManager *TxManager) (*HistoryStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &HistoryStore{
		txManager:         txManager,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: defaultCompressThreshold,
	}, nil
}

// Record inserts an entry inside the caller's transaction.
func (s *HistoryStore) Record(ctx context.Context, entry audit.Entry) error {
	row, err := s.encode(ctx, entry)
	if err != nil {
		return err
	}

	sql, args, err := s.builder.
		Insert("category_history").
		SetMap(SetMapFor(row, ExtractDBColumns[historyRow]())).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert category history: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (s *HistoryStore) List(ctx context.Context, ownerID, categoryID id.ID, limit int) ([]audit.Entry, error) {
	q := s.builder.
		Select(ExtractDBColumns[historyRow]()...).
		From("category_history").
		Where(squirrel.Eq{"owner_id": ownerID, "category_id": categoryID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []historyRow
	if err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		e, err := s.decode(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *HistoryStore) encode(ctx context.Context, entry audit.Entry) (historyRow, error) {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Actor == "" {
		if u := appctx.GetUser(ctx); u != nil {
			entry.Actor = u.Username
		}
	}

	row := historyRow{
		ID:              entry.ID,
		OwnerID:         entry.OwnerID,
		CategoryID:      entry.CategoryID,
		Action:          string(entry.Action),
		CompressionAlgo: CompressionNone,
		Actor:           entry.Actor,
		CreatedAt:       entry.CreatedAt,
	}
	if len(entry.Details) == 0 {
		return row, nil
	}

	details, err := json.Marshal(entry.Details)
	if err != nil {
		return row, fmt.Errorf("marshal history details: %w", err)
	}
	if len(details) > s.compressThreshold {
		row.DetailsCompressed = s.encoder.EncodeAll(details, nil)
		row.CompressionAlgo = CompressionZstd
		return row, nil
	}
	row.Details = details
	return row, nil
}

func (s *HistoryStore) decode(r historyRow) (audit.Entry, error) {
	e := audit.Entry{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		CategoryID: r.CategoryID,
		Action:     audit.Action(r.Action),
		Actor:      r.Actor,
		CreatedAt:  r.CreatedAt,
	}

	raw := []byte(r.Details)
	if r.CompressionAlgo == CompressionZstd && len(r.DetailsCompressed) > 0 {
		decompressed, err := s.decoder.DecodeAll(r.DetailsCompressed, nil)
		if err != nil {
			return e, fmt.Errorf("decompress history details: %w", err)
		}
		raw = decompressed
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e.Details); err != nil {
			return e, fmt.Errorf("unmarshal history details: %w", err)
		}
	}
	return e, nil
}
