package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Scores is one player's Assassins tally. Total is always
// CorrectGuesses + CorrectCategories*4.
type Scores struct {
	CorrectGuesses    int `json:"correctGuesses"`
	CorrectCategories int `json:"correctCategories"`
	Total             int `json:"total"`
}

// TeamScore holds one team's scoreboard entries, keyed by event and
// mini-game name.
type TeamScore struct {
	Events    map[string]int `json:"events"`
	MiniGames map[string]int `json:"miniGames"`
}

// scoreStore persists scores to two flat JSON files: individual Assassins
// tallies keyed by player name, and team event scores keyed by team name.
// Writes go to a temp file first and are swapped in with a rename, so a
// reader sees either the old file or the new one, never a torn write.
type scoreStore struct {
	scoresPath      string
	eventScoresPath string
	data            *GameData
}

func newScoreStore(cfg *Config, data *GameData) *scoreStore {
	return &scoreStore{
		scoresPath:      cfg.scoresFile,
		eventScoresPath: cfg.eventScoresFile,
		data:            data,
	}
}

func (s *scoreStore) readScores() (map[string]Scores, error) {
	raw, err := os.ReadFile(s.scoresPath)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]Scores), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.scoresPath, err)
	}

	scores := make(map[string]Scores)
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.scoresPath, err)
	}
	return scores, nil
}

func (s *scoreStore) writeScores(scores map[string]Scores) error {
	return writeAtomic(s.scoresPath, scores)
}

// readEventScores returns the stored team scoreboard, seeding a zeroed entry
// for every configured team, event, and mini-game when the file does not
// exist yet.
func (s *scoreStore) readEventScores() (map[string]*TeamScore, error) {
	raw, err := os.ReadFile(s.eventScoresPath)
	if errors.Is(err, fs.ErrNotExist) {
		return s.defaultEventScores(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.eventScoresPath, err)
	}

	scores := make(map[string]*TeamScore)
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.eventScoresPath, err)
	}
	return scores, nil
}

func (s *scoreStore) writeEventScores(scores map[string]*TeamScore) error {
	return writeAtomic(s.eventScoresPath, scores)
}

func (s *scoreStore) defaultEventScores() map[string]*TeamScore {
	scores := make(map[string]*TeamScore, len(s.data.TeamAssignments))
	for _, team := range s.data.teamNames() {
		entry := &TeamScore{
			Events:    make(map[string]int, len(s.data.Events)),
			MiniGames: make(map[string]int, len(s.data.MiniGames)),
		}
		for _, event := range s.data.Events {
			entry.Events[event] = 0
		}
		for _, game := range s.data.MiniGames {
			entry.MiniGames[game] = 0
		}
		scores[team] = entry
	}
	return scores
}

func writeAtomic(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
