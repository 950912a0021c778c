package main

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"sync"
)

var (
	errUnknownPlayer = errors.New("unknown player")
	errBadPassword   = errors.New("password required for admin user")
	errNotAdmin      = errors.New("admin access required")
	errUnknownTheme  = errors.New("theme not recognized for this user")
	errUnknownTeam   = errors.New("unknown team")
	errUnknownEvent  = errors.New("unknown event")
)

const themesSolvedMultiplier = 4

// userState is one player's live game state: their board, which cells they
// have cracked, and which themes they have called. Created lazily on first
// login and held in memory; only the scores survive a restart, via the
// score store.
type userState struct {
	isAdmin      bool
	assignedWord string
	board        []string
	themes       []themeEntry
	guesses      map[string]string // target name -> canonical word, terminal
	themeGuesses map[string]bool   // theme name -> solved, terminal
	scores       Scores
}

type LeaderboardEntry struct {
	Name              string `json:"name"`
	CorrectGuesses    int    `json:"correctGuesses"`
	CorrectCategories int    `json:"correctCategories"`
	Total             int    `json:"total"`
}

type AdminPlayerState struct {
	Name         string   `json:"name"`
	AssignedWord string   `json:"assignedWord"`
	Themes       []string `json:"themes"`
}

// Game owns all mutable Assassins state behind one mutex and is handed to
// every request handler. The word assignment is computed once per process;
// a restart deals a fresh game on purpose.
type Game struct {
	cfg     *Config
	data    *GameData
	players map[string]*playerData
	states  map[string]*userState
	scores  map[string]Scores
	store   *scoreStore
	rng     *rand.Rand

	// notify, when set, is called after every scoring mutation, outside the
	// lock. The live scoreboard feed hangs off it.
	notify func()

	mu sync.Mutex
}

func newGame(cfg *Config, data *GameData, store *scoreStore, rng *rand.Rand) (*Game, error) {
	players, err := assignPlayers(data, rng)
	if err != nil {
		return nil, err
	}

	scores, err := store.readScores()
	if err != nil {
		return nil, fmt.Errorf("loading saved scores: %w", err)
	}

	return &Game{
		cfg:     cfg,
		data:    data,
		players: players,
		states:  make(map[string]*userState),
		scores:  scores,
		store:   store,
		rng:     rng,
	}, nil
}

func (g *Game) publish() {
	if g.notify != nil {
		g.notify()
	}
}

// stateLocked returns the player's state, building their board on first
// access. Returns nil for names that cannot play.
func (g *Game) stateLocked(name string) *userState {
	if state, ok := g.states[name]; ok {
		return state
	}

	if g.data.isAdmin(name) {
		state := &userState{
			isAdmin:      true,
			assignedWord: adminWord,
			board:        []string{},
			guesses:      make(map[string]string),
			themeGuesses: make(map[string]bool),
		}
		g.states[name] = state
		return state
	}

	pd, ok := g.players[name]
	if !ok {
		return nil
	}

	state := &userState{
		assignedWord: pd.assignedWord,
		board:        buildBoard(name, pd.themes, g.players, g.rng),
		themes:       pd.themes,
		guesses:      make(map[string]string),
		themeGuesses: make(map[string]bool),
	}
	g.states[name] = state
	return state
}

// persistScoresLocked mirrors the player's tally to the score file. A failed
// write is logged and the in-memory state keeps the change; the next write
// catches the file up.
func (g *Game) persistScoresLocked(name string, state *userState) {
	g.scores[name] = state.scores
	if err := g.store.writeScores(g.scores); err != nil {
		logf(g.cfg, "ERROR: persisting scores for %q: %v", name, err)
	}
}

// Login resolves a name to its game state. Admin names always require the
// shared password.
func (g *Game) Login(name, password string) (isAdmin bool, word string, board []string, err error) {
	if g.data.isAdmin(name) {
		if subtle.ConstantTimeCompare([]byte(password), []byte(g.cfg.adminPassword)) != 1 {
			return false, "", nil, errBadPassword
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.stateLocked(name)
	if state == nil {
		return false, "", nil, errUnknownPlayer
	}

	logf(g.cfg, "GAMES: %q logged in", name)

	return state.isAdmin, state.assignedWord, slices.Clone(state.board), nil
}

// Board returns a player's board layout, initializing their state if needed.
func (g *Game) Board(name string) (board []string, isAdmin bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.stateLocked(name)
	if state == nil {
		return nil, false, errUnknownPlayer
	}
	return slices.Clone(state.board), state.isAdmin, nil
}

// Names returns every name allowed to log in.
func (g *Game) Names() []string {
	return g.data.allNames()
}

// SubmitWordGuess checks the guesser's word against the target's true
// assigned word, case-insensitively. The first correct guess per target
// scores one point; repeats are recognized but never re-award.
func (g *Game) SubmitWordGuess(guesser, target, word string) (correct bool, canonical string, scores Scores, err error) {
	g.mu.Lock()

	state := g.stateLocked(guesser)
	targetData, ok := g.players[target]
	if state == nil || !ok {
		g.mu.Unlock()
		return false, "", Scores{}, errUnknownPlayer
	}

	correct = strings.EqualFold(targetData.assignedWord, word)
	changed := false

	if correct {
		canonical = targetData.assignedWord
		if _, already := state.guesses[target]; !already {
			state.guesses[target] = targetData.assignedWord
			state.scores.CorrectGuesses++
			state.scores.Total = state.scores.CorrectGuesses + state.scores.CorrectCategories*themesSolvedMultiplier
			g.persistScoresLocked(guesser, state)
			changed = true
			logf(g.cfg, "GAMES: %q correctly guessed %q for %q", guesser, word, target)
		}
	}

	scores = state.scores
	g.mu.Unlock()

	if changed {
		g.publish()
	}
	return correct, canonical, scores, nil
}

// resolveTheme maps a free-form theme guess onto one of the player's
// assigned themes. An exact case-insensitive match wins; otherwise the first
// theme (in selection order) that loosely matches by substring in either
// direction is taken.
func resolveTheme(themes []themeEntry, guessed string) (themeEntry, bool) {
	lowered := strings.ToLower(guessed)

	for _, entry := range themes {
		if strings.ToLower(entry.Name) == lowered {
			return entry, true
		}
	}
	for _, entry := range themes {
		key := strings.ToLower(entry.Name)
		if strings.Contains(key, lowered) || strings.Contains(lowered, key) {
			return entry, true
		}
	}
	return themeEntry{}, false
}

// SubmitThemeGuess checks a theme call: the named theme must resolve to one
// of the player's five themes, and every supplied grid word must belong to
// it. Solving a theme is terminal and idempotent.
func (g *Game) SubmitThemeGuess(name, guessedTheme string, gridWords []string) (correct bool, scores Scores, err error) {
	g.mu.Lock()

	state := g.stateLocked(name)
	if state == nil {
		g.mu.Unlock()
		return false, Scores{}, errUnknownPlayer
	}

	entry, ok := resolveTheme(state.themes, guessedTheme)
	if !ok {
		scores = state.scores
		g.mu.Unlock()
		return false, scores, errUnknownTheme
	}

	correct = len(gridWords) > 0
	for _, word := range gridWords {
		if word == "" || !containsFold(entry.Words, word) {
			correct = false
			break
		}
	}

	changed := false
	if correct && !state.themeGuesses[entry.Name] {
		state.themeGuesses[entry.Name] = true
		state.scores.CorrectCategories++
		state.scores.Total = state.scores.CorrectGuesses + state.scores.CorrectCategories*themesSolvedMultiplier
		g.persistScoresLocked(name, state)
		changed = true
		logf(g.cfg, "GAMES: %q solved theme %q", name, entry.Name)
	}

	scores = state.scores
	g.mu.Unlock()

	if changed {
		g.publish()
	}
	return correct, scores, nil
}

func containsFold(words []string, word string) bool {
	for _, w := range words {
		if strings.EqualFold(w, word) {
			return true
		}
	}
	return false
}

// UserScores returns the player's current tally.
func (g *Game) UserScores(name string) (Scores, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.stateLocked(name)
	if state == nil {
		return Scores{}, errUnknownPlayer
	}
	return state.scores, nil
}

// TeamOf reports the player's team, or isAdmin for admin names.
func (g *Game) TeamOf(name string) (team string, isAdmin bool, err error) {
	if g.data.isAdmin(name) {
		return "", true, nil
	}
	if team := g.data.teamOf(name); team != "" {
		return team, false, nil
	}
	return "", false, errUnknownPlayer
}

// Leaderboard reads the persisted individual scores fresh from disk and
// returns them sorted by total, descending.
func (g *Game) Leaderboard() ([]LeaderboardEntry, error) {
	scores, err := g.store.readScores()
	if err != nil {
		return nil, err
	}
	return leaderboardFrom(scores), nil
}

func leaderboardFrom(scores map[string]Scores) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(scores))
	for name, s := range scores {
		entries = append(entries, LeaderboardEntry{
			Name:              name,
			CorrectGuesses:    s.CorrectGuesses,
			CorrectCategories: s.CorrectCategories,
			Total:             s.Total,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// TeamScores merges the stored event scoreboard with the live Assassins
// totals. The Assassins entry is never trusted from disk: it is always the
// sum of the current team members' individual totals.
func (g *Game) TeamScores() (map[string]*TeamScore, error) {
	stored, err := g.store.readEventScores()
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, team := range g.data.teamNames() {
		entry, ok := stored[team]
		if !ok {
			continue
		}
		entry.Events["Assassins"] = g.teamAssassinsTotalLocked(team, "")
	}
	return stored, nil
}

// teamAssassinsTotalLocked sums the team members' persisted totals,
// skipping exclude.
func (g *Game) teamAssassinsTotalLocked(team, exclude string) int {
	total := 0
	for _, member := range g.data.TeamAssignments[team] {
		if member == exclude {
			continue
		}
		total += g.scores[member].Total
	}
	return total
}

// UpdateEventScore sets a team's score for one event or mini-game.
// Admin only.
func (g *Game) UpdateEventScore(name, team, event string, score int, isMinigame bool) (map[string]*TeamScore, error) {
	if !g.data.isAdmin(name) {
		return nil, errNotAdmin
	}

	current, err := g.store.readEventScores()
	if err != nil {
		return nil, err
	}

	entry, ok := current[team]
	if !ok {
		return nil, errUnknownTeam
	}

	if isMinigame {
		if !slices.Contains(g.data.MiniGames, event) {
			return nil, errUnknownEvent
		}
		entry.MiniGames[event] = score
	} else {
		if !slices.Contains(g.data.Events, event) {
			return nil, errUnknownEvent
		}
		entry.Events[event] = score
	}

	if err := g.store.writeEventScores(current); err != nil {
		return nil, err
	}

	logf(g.cfg, "SCORES: %q set %q/%q to %d", name, team, event, score)

	g.publish()
	return current, nil
}

// AdminState dumps every real player's assigned word and theme names.
// Admin only.
func (g *Game) AdminState(name string) ([]AdminPlayerState, error) {
	if !g.data.isAdmin(name) {
		return nil, errNotAdmin
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]AdminPlayerState, 0, len(g.players))
	for player, pd := range g.players {
		if pd.isAdmin {
			continue
		}
		themes := make([]string, 0, len(pd.themes))
		for _, entry := range pd.themes {
			themes = append(themes, entry.Name)
		}
		out = append(out, AdminPlayerState{
			Name:         player,
			AssignedWord: pd.assignedWord,
			Themes:       themes,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ResetScore clears one player's Assassins progress: in-memory state, their
// entry in the score file, and their contribution to the team scoreboard.
// Admin only.
func (g *Game) ResetScore(adminName, playerName string) error {
	if !g.data.isAdmin(adminName) {
		return errNotAdmin
	}

	g.mu.Lock()

	if state, ok := g.states[playerName]; ok {
		state.scores = Scores{}
		state.guesses = make(map[string]string)
		state.themeGuesses = make(map[string]bool)
	}

	delete(g.scores, playerName)
	if err := g.store.writeScores(g.scores); err != nil {
		logf(g.cfg, "ERROR: persisting score reset for %q: %v", playerName, err)
	}

	// Re-derive the team's Assassins entry from the remaining members so a
	// scoreboard read never sees the stale contribution.
	if team := g.data.teamOf(playerName); team != "" {
		if current, err := g.store.readEventScores(); err != nil {
			logf(g.cfg, "ERROR: reading event scores during reset: %v", err)
		} else if entry, ok := current[team]; ok {
			entry.Events["Assassins"] = g.teamAssassinsTotalLocked(team, playerName)
			if err := g.store.writeEventScores(current); err != nil {
				logf(g.cfg, "ERROR: persisting event scores during reset: %v", err)
			}
		}
	}

	g.mu.Unlock()

	logf(g.cfg, "SCORES: %q reset Assassins score for %q", adminName, playerName)

	g.publish()
	return nil
}
