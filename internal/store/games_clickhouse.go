package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/openchess/tuner-api/internal/models"
)

// GamesSource loads game records from the ClickHouse games table. The
// table is materialized upstream; this is the read side of the input
// boundary.
type GamesSource struct {
	ch     driver.Conn
	logger *zap.SugaredLogger
}

func NewGamesSource(ch driver.Conn, logger *zap.Logger) *GamesSource {
	return &GamesSource{ch: ch, logger: logger.Sugar()}
}

// Load reads every game. Rows with empty symbols are rejected rather
// than silently tolerated.
func (s *GamesSource) Load(ctx context.Context) ([]models.GameRecord, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT turns, white_rating, black_rating, opening_eco, opening_ply, winner
		FROM chess.games
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []models.GameRecord
	for rows.Next() {
		var (
			g                        models.GameRecord
			turns, white, black, ply uint32
		)
		if err := rows.Scan(&turns, &white, &black, &g.OpeningECO, &ply, &g.Winner); err != nil {
			return nil, fmt.Errorf("scan game row %d: %w", len(games), err)
		}
		if g.OpeningECO == "" || g.Winner == "" {
			return nil, fmt.Errorf("game row %d has a missing symbol", len(games))
		}
		g.Turns = int(turns)
		g.WhiteRating = int(white)
		g.BlackRating = int(black)
		g.OpeningPly = int(ply)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("games table is empty")
	}

	s.logger.Infow("Games loaded", "rows", len(games))
	return games, nil
}
