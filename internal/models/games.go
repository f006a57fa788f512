package models

// GameRecord is one finished game as delivered by the tabular source.
// Loading, type coercion and missing-value auditing happen upstream;
// records are immutable once loaded.
type GameRecord struct {
	Turns       int    `json:"turns"`
	WhiteRating int    `json:"white_rating"`
	BlackRating int    `json:"black_rating"`
	OpeningECO  string `json:"opening_eco"` // ECO group letter, A through E
	OpeningPly  int    `json:"opening_ply"`
	Winner      string `json:"winner"` // "white", "black" or "draw"
}

// Column names shared by the loaders, the recipe and the pipeline.
const (
	ColTurns       = "turns"
	ColWhiteRating = "white_rating"
	ColBlackRating = "black_rating"
	ColOpeningECO  = "opening_eco"
	ColOpeningPly  = "opening_ply"
	ColWinner      = "winner"
)
