package main

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// testGameData has 10 players and 10 words across 5 themes.
func testGameData() *GameData {
	return &GameData{
		TeamAssignments: map[string][]string{
			"Team 1": {"Alice", "Bob", "Charlie", "Dave"},
			"Team 2": {"Eve", "Frank", "Grace", "Heidi"},
			"Team 3": {"Ivan", "Julia"},
		},
		WordCategories: map[string][]string{
			"animals":  {"Lion", "Tiger", "Bear", "Zebra"},
			"colors":   {"Red", "Blue"},
			"fruits":   {"Apple", "Banana"},
			"vehicles": {"Car"},
			"tools":    {"Hammer"},
		},
		AdminNames:       []string{"Anna Kelly", "Pat Lally"},
		ReservedPlayers:  []string{"Anna Kelly", "Pat Lally"},
		RemovablePlayers: []string{"Julia", "Ivan", "Heidi", "Grace"},
		Events:           []string{"Assassins", "Relay Race"},
		MiniGames:        []string{"Spike"},
		ScoringOptions:   map[string][]int{"Relay Race": {400, 300, 200, 100, 0}},
	}
}

// sixThemeGameData has enough themes that a player's own theme can always
// be excluded: 12 players, 12 words across 6 themes.
func sixThemeGameData() *GameData {
	return &GameData{
		TeamAssignments: map[string][]string{
			"Team 1": {"Alice", "Bob", "Charlie", "Dave", "Eve", "Frank"},
			"Team 2": {"Grace", "Heidi", "Ivan", "Julia", "Kevin", "Laura"},
		},
		WordCategories: map[string][]string{
			"animals":  {"Lion", "Tiger"},
			"colors":   {"Red", "Blue"},
			"fruits":   {"Apple", "Banana"},
			"vehicles": {"Car", "Truck"},
			"tools":    {"Hammer", "Wrench"},
			"weather":  {"Storm", "Drizzle"},
		},
		AdminNames:       []string{"Anna Kelly", "Pat Lally"},
		ReservedPlayers:  []string{"Anna Kelly", "Pat Lally"},
		RemovablePlayers: []string{"Laura", "Kevin", "Julia", "Ivan"},
		Events:           []string{"Assassins"},
	}
}

func TestAssignPlayersBijection(t *testing.T) {
	data := testGameData()

	assigned, err := assignPlayers(data, testRNG())
	if err != nil {
		t.Fatalf("assignPlayers: %v", err)
	}

	wordTheme := make(map[string]string)
	for theme, words := range data.WordCategories {
		for _, word := range words {
			wordTheme[word] = theme
		}
	}

	seen := make(map[string]string)
	realPlayers := 0
	for name, pd := range assigned {
		if pd.isAdmin || pd.removed {
			continue
		}
		realPlayers++

		if _, ok := wordTheme[pd.assignedWord]; !ok {
			t.Errorf("player %q assigned word %q which is not in the pool", name, pd.assignedWord)
		}
		if other, ok := seen[pd.assignedWord]; ok {
			t.Errorf("word %q assigned to both %q and %q", pd.assignedWord, other, name)
		}
		seen[pd.assignedWord] = name
	}

	if realPlayers != 10 {
		t.Errorf("expected 10 playing assignments, got %d", realPlayers)
	}
	if len(seen) != 10 {
		t.Errorf("expected 10 distinct words assigned, got %d", len(seen))
	}
}

func TestAssignPlayersThemeCount(t *testing.T) {
	assigned, err := assignPlayers(testGameData(), testRNG())
	if err != nil {
		t.Fatalf("assignPlayers: %v", err)
	}

	for name, pd := range assigned {
		if pd.isAdmin {
			continue
		}
		if len(pd.themes) != boardThemes {
			t.Errorf("player %q has %d themes, want %d", name, len(pd.themes), boardThemes)
		}
		for _, entry := range pd.themes {
			if len(entry.Words) == 0 {
				t.Errorf("player %q has theme %q with no words", name, entry.Name)
			}
		}
	}
}

func TestAssignPlayersExcludesOwnTheme(t *testing.T) {
	data := sixThemeGameData()

	assigned, err := assignPlayers(data, testRNG())
	if err != nil {
		t.Fatalf("assignPlayers: %v", err)
	}

	wordTheme := make(map[string]string)
	for theme, words := range data.WordCategories {
		for _, word := range words {
			wordTheme[word] = theme
		}
	}

	for name, pd := range assigned {
		if pd.isAdmin || pd.removed {
			continue
		}
		own := wordTheme[pd.assignedWord]
		for _, entry := range pd.themes {
			if entry.Name == own {
				t.Errorf("player %q was given their own theme %q", name, own)
			}
		}
	}
}

func TestAssignPlayersExtraWords(t *testing.T) {
	data := &GameData{
		TeamAssignments: map[string][]string{
			"Team 1": {"Alice", "Bob"},
		},
		WordCategories: map[string][]string{
			"animals": {"Lion", "Tiger", "Bear", "Zebra"},
		},
		AdminNames:      []string{"Anna Kelly", "Pat Lally"},
		ReservedPlayers: []string{"Anna Kelly", "Pat Lally"},
	}

	assigned, err := assignPlayers(data, testRNG())
	if err != nil {
		t.Fatalf("assignPlayers: %v", err)
	}

	// Both reserved identities soak up surplus words but end up as admins.
	for _, name := range []string{"Anna Kelly", "Pat Lally"} {
		pd, ok := assigned[name]
		if !ok {
			t.Fatalf("reserved player %q missing from assignment", name)
		}
		if !pd.isAdmin || pd.assignedWord != adminWord {
			t.Errorf("reserved player %q = %+v, want admin with word %q", name, pd, adminWord)
		}
	}

	if assigned["Alice"].assignedWord == assigned["Bob"].assignedWord {
		t.Error("Alice and Bob share a word")
	}
}

func TestAssignPlayersTooManyExtraWords(t *testing.T) {
	data := &GameData{
		TeamAssignments: map[string][]string{
			"Team 1": {"Alice"},
		},
		WordCategories: map[string][]string{
			"animals": {"Lion", "Tiger", "Bear", "Zebra"},
		},
		ReservedPlayers: []string{"Anna Kelly", "Pat Lally"},
	}

	if _, err := assignPlayers(data, testRNG()); err == nil {
		t.Fatal("expected a configuration error with 3 extra words")
	} else if !strings.Contains(err.Error(), "extra words") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAssignPlayersExtraPlayers(t *testing.T) {
	data := &GameData{
		TeamAssignments: map[string][]string{
			"Team 1": {"Alice", "Bob", "Charlie", "Dave"},
		},
		WordCategories: map[string][]string{
			"animals": {"Lion", "Tiger"},
		},
		RemovablePlayers: []string{"Dave", "Charlie"},
	}

	assigned, err := assignPlayers(data, testRNG())
	if err != nil {
		t.Fatalf("assignPlayers: %v", err)
	}

	for _, name := range []string{"Charlie", "Dave"} {
		pd := assigned[name]
		if pd == nil || !pd.removed {
			t.Fatalf("expected %q to be benched, got %+v", name, pd)
		}
		if pd.assignedWord != placeholderWord {
			t.Errorf("benched player %q has word %q, want %q", name, pd.assignedWord, placeholderWord)
		}
		if len(pd.themes) == 0 {
			t.Errorf("benched player %q has no themes", name)
		}
	}

	words := map[string]bool{}
	for _, name := range []string{"Alice", "Bob"} {
		words[assigned[name].assignedWord] = true
	}
	if len(words) != 2 {
		t.Errorf("remaining players do not hold distinct real words: %v", words)
	}
}

func TestAssignPlayersTooManyExtraPlayers(t *testing.T) {
	data := &GameData{
		TeamAssignments: map[string][]string{
			"Team 1": {"Alice", "Bob", "Charlie", "Dave", "Eve", "Frank"},
		},
		WordCategories: map[string][]string{
			"animals": {"Lion"},
		},
		RemovablePlayers: []string{"Frank", "Eve", "Dave", "Charlie"},
	}

	if _, err := assignPlayers(data, testRNG()); err == nil {
		t.Fatal("expected a configuration error with 5 extra players")
	}
}

func TestAssignPlayersDeterministicWithSeed(t *testing.T) {
	first, err := assignPlayers(testGameData(), testRNG())
	if err != nil {
		t.Fatalf("assignPlayers: %v", err)
	}
	second, err := assignPlayers(testGameData(), testRNG())
	if err != nil {
		t.Fatalf("assignPlayers: %v", err)
	}

	for name, pd := range first {
		if second[name].assignedWord != pd.assignedWord {
			t.Errorf("same seed gave %q different words: %q vs %q", name, pd.assignedWord, second[name].assignedWord)
		}
	}
}
