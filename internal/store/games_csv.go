package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/openchess/tuner-api/internal/models"
)

// csv column order: turns, white_rating, black_rating, opening_eco,
// opening_ply, winner. A header row is detected and skipped.

// LoadGamesCSV reads game records from a local CSV file, for runs
// without a ClickHouse source.
func LoadGamesCSV(path string, logger *zap.Logger) ([]models.GameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	var games []models.GameRecord
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line+1, err)
		}
		line++

		if line == 1 && rec[0] == models.ColTurns {
			continue
		}

		g, err := parseGameRow(rec)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		games = append(games, g)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("csv %s holds no game rows", path)
	}

	logger.Sugar().Infow("Games loaded", "path", path, "rows", len(games))
	return games, nil
}

func parseGameRow(rec []string) (models.GameRecord, error) {
	var g models.GameRecord
	var err error
	if g.Turns, err = strconv.Atoi(rec[0]); err != nil {
		return g, fmt.Errorf("turns: %w", err)
	}
	if g.WhiteRating, err = strconv.Atoi(rec[1]); err != nil {
		return g, fmt.Errorf("white_rating: %w", err)
	}
	if g.BlackRating, err = strconv.Atoi(rec[2]); err != nil {
		return g, fmt.Errorf("black_rating: %w", err)
	}
	g.OpeningECO = rec[3]
	if g.OpeningPly, err = strconv.Atoi(rec[4]); err != nil {
		return g, fmt.Errorf("opening_ply: %w", err)
	}
	g.Winner = rec[5]
	if g.OpeningECO == "" || g.Winner == "" {
		return g, fmt.Errorf("missing symbol")
	}
	return g, nil
}
