package store

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadGamesCSV(t *testing.T) {
	path := writeCSV(t, "turns,white_rating,black_rating,opening_eco,opening_ply,winner\n"+
		"57,1893,1740,C,5,white\n"+
		"33,1440,1502,A,3,black\n"+
		"91,2100,2095,D,11,draw\n")

	games, err := LoadGamesCSV(path, zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("rows = %d, want 3", len(games))
	}

	g := games[0]
	if g.Turns != 57 || g.WhiteRating != 1893 || g.BlackRating != 1740 ||
		g.OpeningECO != "C" || g.OpeningPly != 5 || g.Winner != "white" {
		t.Errorf("first row = %+v", g)
	}
	if games[2].Winner != "draw" {
		t.Errorf("last winner = %q, want draw", games[2].Winner)
	}
}

func TestLoadGamesCSVNoHeader(t *testing.T) {
	path := writeCSV(t, "57,1893,1740,C,5,white\n")

	games, err := LoadGamesCSV(path, zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(games) != 1 {
		t.Errorf("rows = %d, want 1", len(games))
	}
}

func TestLoadGamesCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"header only", "turns,white_rating,black_rating,opening_eco,opening_ply,winner\n"},
		{"bad turns", "abc,1893,1740,C,5,white\n"},
		{"missing eco", "57,1893,1740,,5,white\n"},
		{"wrong field count", "57,1893,1740,C,5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, tt.content)
			if _, err := LoadGamesCSV(path, zap.NewNop()); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadGamesCSVMissingFile(t *testing.T) {
	if _, err := LoadGamesCSV(filepath.Join(t.TempDir(), "absent.csv"), zap.NewNop()); err == nil {
		t.Error("expected error, got nil")
	}
}
