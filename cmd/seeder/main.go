// The seeder fills the local ClickHouse games table with synthetic
// records so the tuner can run without the real export. Ratings drive
// the outcome so a seeded run produces an informative dataset rather
// than pure noise.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"math/rand"

	"github.com/ClickHouse/clickhouse-go/v2"
)

const ddl = `
CREATE TABLE IF NOT EXISTS chess.games (
	id           UInt32,
	turns        UInt32,
	white_rating UInt32,
	black_rating UInt32,
	opening_eco  String,
	opening_ply  UInt32,
	winner       String
) ENGINE = MergeTree ORDER BY id
`

var ecoGroups = []string{"A", "B", "C", "D", "E"}

func main() {
	dsn := flag.String("dsn", "clickhouse://localhost:9000/chess", "ClickHouse DSN")
	rows := flag.Int("rows", 20000, "number of games to generate")
	seed := flag.Int64("seed", 1, "generator seed")
	flag.Parse()

	opts, err := clickhouse.ParseDSN(*dsn)
	if err != nil {
		log.Fatalf("parse dsn: %v", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	if err := conn.Exec(ctx, ddl); err != nil {
		log.Fatalf("create table: %v", err)
	}

	batch, err := conn.PrepareBatch(ctx, `
		INSERT INTO chess.games (id, turns, white_rating, black_rating, opening_eco, opening_ply, winner)
	`)
	if err != nil {
		log.Fatalf("prepare batch: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	for i := 0; i < *rows; i++ {
		white := 800 + rng.Intn(1700)
		black := 800 + rng.Intn(1700)
		winner := outcome(rng, white, black)

		err := batch.Append(
			uint32(i+1),
			uint32(20+rng.Intn(120)),
			uint32(white),
			uint32(black),
			ecoGroups[rng.Intn(len(ecoGroups))],
			uint32(2+rng.Intn(18)),
			winner,
		)
		if err != nil {
			log.Fatalf("append row %d: %v", i, err)
		}
	}

	if err := batch.Send(); err != nil {
		log.Fatalf("send batch: %v", err)
	}
	log.Printf("seeded %d games", *rows)
}

// outcome samples a winner biased by the rating gap, with a thin band
// of draws.
func outcome(rng *rand.Rand, white, black int) string {
	gap := float64(white - black)
	pWhite := 1 / (1 + math.Pow(10, -gap/400))
	r := rng.Float64()
	switch {
	case r < 0.05:
		return "draw"
	case r < 0.05+0.95*pWhite:
		return "white"
	default:
		return "black"
	}
}
