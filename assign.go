package main

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

const (
	boardThemes = 5
	boardRows   = 4
	boardSize   = boardThemes * boardRows

	maxExtraWords   = 2
	maxExtraPlayers = 4

	// adminWord marks an identity that never plays; placeholderWord marks a
	// player removed during count reconciliation. Neither belongs to any theme,
	// so neither can ever match a board cell.
	adminWord       = "Admin"
	placeholderWord = "_placeholder_"
)

type themeEntry struct {
	Name  string
	Words []string
}

type playerData struct {
	assignedWord string
	themes       []themeEntry
	isAdmin      bool
	removed      bool
}

// assignPlayers produces the one-time secret word assignment: a bijection
// between the word pool and the player pool, plus a personalized theme
// selection per player. The pools must balance to within maxExtraWords /
// maxExtraPlayers; anything worse is a configuration error and the server
// refuses to start.
func assignPlayers(data *GameData, rng *rand.Rand) (map[string]*playerData, error) {
	words := make([]string, 0, 32)
	wordTheme := make(map[string]string)
	for _, theme := range data.themeNames() {
		for _, word := range data.WordCategories[theme] {
			words = append(words, word)
			wordTheme[word] = theme
		}
	}

	players := make([]string, 0, 32)
	for _, team := range data.teamNames() {
		players = append(players, data.TeamAssignments[team]...)
	}

	var removed []string

	switch extra := len(words) - len(players); {
	case extra > 0:
		// Surplus words are soaked up by reserved non-playing identities.
		if extra > maxExtraWords {
			return nil, fmt.Errorf("too many extra words (%d), maximum allowed is %d", extra, maxExtraWords)
		}
		if extra > len(data.ReservedPlayers) {
			return nil, fmt.Errorf("%d extra words but only %d reserved players configured", extra, len(data.ReservedPlayers))
		}
		players = append(players, data.ReservedPlayers[:extra]...)

	case extra < 0:
		// Surplus players are benched in priority order; they get a
		// placeholder word below so they can still log in.
		short := -extra
		if short > maxExtraPlayers {
			return nil, fmt.Errorf("too many extra players (%d), maximum allowed is %d", short, maxExtraPlayers)
		}
		if short > len(data.RemovablePlayers) {
			return nil, fmt.Errorf("%d extra players but only %d removable players configured", short, len(data.RemovablePlayers))
		}
		for _, name := range data.RemovablePlayers[:short] {
			i := slices.Index(players, name)
			if i == -1 {
				continue
			}
			players = slices.Delete(players, i, i+1)
			removed = append(removed, name)
		}
	}

	if len(players) != len(words) {
		return nil, fmt.Errorf("player count (%d) does not match word count (%d) after adjustments", len(players), len(words))
	}

	rng.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})

	assigned := make(map[string]*playerData, len(players)+len(removed))
	for i, name := range players {
		assigned[name] = &playerData{assignedWord: words[i]}
	}

	// Iterate the ordered pool rather than the map so a seeded rng yields
	// reproducible selections.
	for _, name := range players {
		if data.isAdmin(name) {
			continue
		}
		pd := assigned[name]
		pd.themes = selectThemes(data, rng, wordTheme[pd.assignedWord])
	}

	for _, name := range removed {
		assigned[name] = &playerData{
			assignedWord: placeholderWord,
			themes:       selectThemes(data, rng, ""),
			removed:      true,
		}
	}

	for _, name := range data.AdminNames {
		assigned[name] = &playerData{
			assignedWord: adminWord,
			isAdmin:      true,
		}
	}

	return assigned, nil
}

// selectThemes picks up to boardThemes themes at random, excluding the theme
// that contains the player's own word. When excluding it would leave fewer
// than boardThemes choices, the player's own theme is allowed back in.
func selectThemes(data *GameData, rng *rand.Rand, exclude string) []themeEntry {
	candidates := make([]string, 0, len(data.WordCategories))
	for _, theme := range data.themeNames() {
		if theme == exclude {
			continue
		}
		candidates = append(candidates, theme)
	}

	if len(candidates) < boardThemes {
		candidates = data.themeNames()
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	selected := make([]themeEntry, 0, boardThemes)
	for _, theme := range candidates[:min(boardThemes, len(candidates))] {
		selected = append(selected, themeEntry{
			Name:  theme,
			Words: slices.Clone(data.WordCategories[theme]),
		})
	}

	return selected
}
