package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/janhofer/linemates/internal/domain/rawfeed"
	qb "github.com/janhofer/linemates/internal/platform/querybuilder"
)

type RawFeedRepository struct {
	db *sqlx.DB
}

func NewRawFeedRepository(db *sqlx.DB) *RawFeedRepository {
	return &RawFeedRepository{db: db}
}

func (r *RawFeedRepository) Upsert(ctx context.Context, payload rawfeed.Payload) error {
	// The payload column is jsonb; reject broken provider bodies up front so
	// the insert cannot fail halfway through a run.
	if !jsoniter.Valid([]byte(payload.PayloadJSON)) {
		return fmt.Errorf("raw feed payload endpoint=%s game=%s is not valid json", payload.Endpoint, payload.GameID)
	}

	model := rawFeedPayloadInsertModel{
		Source:    payload.Source,
		Endpoint:  payload.Endpoint,
		GameID:    payload.GameID,
		TeamID:    optionalString(payload.TeamID),
		Payload:   payload.PayloadJSON,
		FetchedAt: payload.FetchedAt,
	}

	query, args, err := qb.InsertModel("raw_feed_payloads", model, `ON CONFLICT (source, endpoint, game_id)
DO UPDATE SET
	team_id = EXCLUDED.team_id,
	payload = EXCLUDED.payload,
	fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("build upsert raw feed payload query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert raw feed payload endpoint=%s game=%s: %w", payload.Endpoint, payload.GameID, err)
	}
	return nil
}

type rawFeedPayloadInsertModel struct {
	Source    string    `db:"source"`
	Endpoint  string    `db:"endpoint"`
	GameID    string    `db:"game_id"`
	TeamID    *string   `db:"team_id"`
	Payload   string    `db:"payload"`
	FetchedAt time.Time `db:"fetched_at"`
}
