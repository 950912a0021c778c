package main

import (
	"math/rand/v2"
	"slices"
	"sort"
)

// buildBoard lays out the viewer's 5x4 guessing grid as a flattened slice:
// board[col*boardRows : (col+1)*boardRows] holds the column for the viewer's
// themes[col]. Each cell names another player whose secret word belongs to
// that column's theme. No name appears twice on one board, the viewer never
// appears on their own board, and columns short of candidates are padded
// with "".
func buildBoard(viewer string, themes []themeEntry, players map[string]*playerData, rng *rand.Rand) []string {
	available := make([]string, 0, len(players))
	for name, pd := range players {
		if name == viewer || pd.isAdmin {
			continue
		}
		available = append(available, name)
	}
	sort.Strings(available)

	used := map[string]bool{viewer: true}
	board := make([]string, 0, boardSize)

	for col := range boardThemes {
		if col >= len(themes) {
			for range boardRows {
				board = append(board, "")
			}
			continue
		}

		candidates := make([]string, 0, len(available))
		for _, name := range available {
			if used[name] {
				continue
			}
			if slices.Contains(themes[col].Words, players[name].assignedWord) {
				candidates = append(candidates, name)
			}
		}

		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})

		for row := range boardRows {
			if row < len(candidates) {
				board = append(board, candidates[row])
				used[candidates[row]] = true
			} else {
				board = append(board, "")
			}
		}
	}

	return board
}
