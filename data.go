package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
)

// GameData is the static event configuration: who is on which team, which
// themes own which code words, and which events appear on the scoreboard.
// It is loaded once at startup and never mutated.
type GameData struct {
	TeamAssignments  map[string][]string `json:"teamAssignments"`
	WordCategories   map[string][]string `json:"wordCategories"`
	AdminNames       []string            `json:"adminNames"`
	ReservedPlayers  []string            `json:"reservedPlayers"`
	RemovablePlayers []string            `json:"removablePlayers"`
	Events           []string            `json:"events"`
	MiniGames        []string            `json:"miniGames"`
	ScoringOptions   map[string][]int    `json:"scoringOptions"`
}

//go:embed data.json
var defaultGameData []byte

func loadGameData(cfg *Config) (*GameData, error) {
	raw := defaultGameData

	if cfg.dataFile != "" {
		var err error
		raw, err = os.ReadFile(cfg.dataFile)
		if err != nil {
			return nil, fmt.Errorf("reading game data file: %w", err)
		}
	}

	data := &GameData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("parsing game data: %w", err)
	}

	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("invalid game data: %w", err)
	}

	return data, nil
}

func (d *GameData) validate() error {
	if len(d.TeamAssignments) == 0 {
		return fmt.Errorf("no teams configured")
	}
	if len(d.WordCategories) == 0 {
		return fmt.Errorf("no word categories configured")
	}

	seenPlayers := make(map[string]bool)
	for team, members := range d.TeamAssignments {
		if len(members) == 0 {
			return fmt.Errorf("team %q has no members", team)
		}
		for _, name := range members {
			if seenPlayers[name] {
				return fmt.Errorf("player %q appears on more than one team", name)
			}
			seenPlayers[name] = true
		}
	}

	seenWords := make(map[string]string)
	for theme, words := range d.WordCategories {
		if len(words) == 0 {
			return fmt.Errorf("theme %q has no words", theme)
		}
		for _, word := range words {
			if other, ok := seenWords[word]; ok {
				return fmt.Errorf("word %q appears in both %q and %q", word, other, theme)
			}
			seenWords[word] = theme
		}
	}

	for _, name := range d.AdminNames {
		if seenPlayers[name] {
			return fmt.Errorf("admin %q must not be a team member", name)
		}
	}

	return nil
}

func (d *GameData) isAdmin(name string) bool {
	return slices.Contains(d.AdminNames, name)
}

// teamOf returns the team a player belongs to, or "" for admins and
// unknown names.
func (d *GameData) teamOf(name string) string {
	for team, members := range d.TeamAssignments {
		if slices.Contains(members, name) {
			return team
		}
	}
	return ""
}

// teamNames returns team names in stable sorted order, since map iteration
// order would otherwise leak into assignments and API payloads.
func (d *GameData) teamNames() []string {
	names := make([]string, 0, len(d.TeamAssignments))
	for team := range d.TeamAssignments {
		names = append(names, team)
	}
	sort.Strings(names)
	return names
}

func (d *GameData) themeNames() []string {
	names := make([]string, 0, len(d.WordCategories))
	for theme := range d.WordCategories {
		names = append(names, theme)
	}
	sort.Strings(names)
	return names
}

// allNames lists every name allowed to log in: team members first, then
// admins, matching the order the login screen shows them.
func (d *GameData) allNames() []string {
	names := make([]string, 0, 8)
	for _, team := range d.teamNames() {
		names = append(names, d.TeamAssignments[team]...)
	}
	names = append(names, d.AdminNames...)
	return names
}
