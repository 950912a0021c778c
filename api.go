package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) (int, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return w.Write(raw)
}

func apiError(cfg *Config, w http.ResponseWriter, status int, message string) {
	_, _ = writeJSON(cfg, w, status, map[string]string{"error": message})
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success          bool     `json:"success"`
	IsAdmin          bool     `json:"isAdmin,omitempty"`
	RequiresPassword bool     `json:"requiresPassword,omitempty"`
	Message          string   `json:"message,omitempty"`
	Word             string   `json:"word,omitempty"`
	BoardLayout      []string `json:"boardLayout,omitempty"`
}

func serveLogin(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			_, _ = writeJSON(cfg, w, http.StatusBadRequest, loginResponse{Message: "Name is required"})
			return
		}

		isAdmin, word, board, err := g.Login(req.Name, req.Password)
		switch {
		case errors.Is(err, errBadPassword):
			_, _ = writeJSON(cfg, w, http.StatusUnauthorized, loginResponse{
				RequiresPassword: true,
				Message:          "Password required for admin user",
			})
			return
		case errors.Is(err, errUnknownPlayer):
			_, _ = writeJSON(cfg, w, http.StatusUnauthorized, loginResponse{Message: "Invalid name"})
			return
		case err != nil:
			apiError(cfg, w, http.StatusInternalServerError, "Error initializing user state.")
			return
		}

		resp := loginResponse{Success: true, IsAdmin: isAdmin, Word: word}
		if !isAdmin {
			resp.BoardLayout = board
		}

		written, err := writeJSON(cfg, w, http.StatusOK, resp)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Login for %q (%s) to %s in %s",
			req.Name,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// serveNames returns the full name list when no name is given, and a
// logged-in player's board layout otherwise.
func serveNames(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		name := r.URL.Query().Get("name")

		if name == "" {
			if _, err := writeJSON(cfg, w, http.StatusOK, g.Names()); err != nil {
				errs <- err
			}
			return
		}

		board, isAdmin, err := g.Board(name)
		if err != nil {
			_, _ = writeJSON(cfg, w, http.StatusNotFound, map[string]string{
				"message": "User state not found or not initialized. Please login.",
			})
			return
		}

		if isAdmin {
			_, _ = writeJSON(cfg, w, http.StatusOK, map[string]bool{"isAdmin": true})
			return
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, board); err != nil {
			errs <- err
		}
	}
}

type guessRequest struct {
	Guesser string `json:"guesser"`
	Target  string `json:"target"`
	Word    string `json:"word"`
}

type guessResponse struct {
	Correct       bool   `json:"correct"`
	CanonicalWord string `json:"canonicalWord,omitempty"`
	Message       string `json:"message,omitempty"`
	Scores        Scores `json:"scores"`
}

func serveGuess(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req guessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Guesser == "" || req.Target == "" || req.Word == "" {
			_, _ = writeJSON(cfg, w, http.StatusBadRequest, guessResponse{Message: "Missing data for guess."})
			return
		}

		correct, canonical, scores, err := g.SubmitWordGuess(req.Guesser, req.Target, req.Word)
		if err != nil {
			_, _ = writeJSON(cfg, w, http.StatusBadRequest, guessResponse{Message: "Missing data for guess."})
			return
		}

		written, err := writeJSON(cfg, w, http.StatusOK, guessResponse{
			Correct:       correct,
			CanonicalWord: canonical,
			Scores:        scores,
		})
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Guess by %q on %q (%s) to %s in %s",
			req.Guesser,
			req.Target,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

type themeRequest struct {
	Name         string   `json:"name"`
	GuessedTheme string   `json:"guessedTheme"`
	GridWords    []string `json:"gridWords"`
}

type themeResponse struct {
	Correct bool   `json:"correct"`
	Message string `json:"message,omitempty"`
	Scores  Scores `json:"scores"`
}

func serveTheme(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req themeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.GuessedTheme == "" {
			_, _ = writeJSON(cfg, w, http.StatusBadRequest, themeResponse{Message: "User state not found."})
			return
		}

		correct, scores, err := g.SubmitThemeGuess(req.Name, req.GuessedTheme, req.GridWords)
		switch {
		case errors.Is(err, errUnknownPlayer):
			_, _ = writeJSON(cfg, w, http.StatusBadRequest, themeResponse{Message: "User state not found."})
			return
		case errors.Is(err, errUnknownTheme):
			_, _ = writeJSON(cfg, w, http.StatusBadRequest, themeResponse{
				Message: "Theme not recognized for this user.",
				Scores:  scores,
			})
			return
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, themeResponse{Correct: correct, Scores: scores}); err != nil {
			errs <- err
		}
	}
}

func serveTeams(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if _, err := writeJSON(cfg, w, http.StatusOK, g.data.TeamAssignments); err != nil {
			errs <- err
		}
	}
}

func serveScores(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		scores, err := g.TeamScores()
		if err != nil {
			apiError(cfg, w, http.StatusInternalServerError, "Failed to fetch team scores")
			return
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, scores); err != nil {
			errs <- err
		}
	}
}

func serveSingleTeamScores(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		team := r.URL.Query().Get("team")
		if team == "" {
			apiError(cfg, w, http.StatusBadRequest, "Team parameter is required")
			return
		}

		scores, err := g.TeamScores()
		if err != nil {
			apiError(cfg, w, http.StatusInternalServerError, "Failed to fetch team scores")
			return
		}

		entry, ok := scores[team]
		if !ok {
			apiError(cfg, w, http.StatusNotFound, "Team not found")
			return
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, entry); err != nil {
			errs <- err
		}
	}
}

type scoreUpdateRequest struct {
	Name       string `json:"name"`
	Team       string `json:"team"`
	Event      string `json:"event"`
	Score      int    `json:"score"`
	IsMinigame bool   `json:"isMinigame"`
}

func serveScoreUpdate(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req scoreUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiError(cfg, w, http.StatusBadRequest, "Invalid request body")
			return
		}

		updated, err := g.UpdateEventScore(req.Name, req.Team, req.Event, req.Score, req.IsMinigame)
		switch {
		case errors.Is(err, errNotAdmin):
			apiError(cfg, w, http.StatusForbidden, "Unauthorized: Admin access required")
			return
		case errors.Is(err, errUnknownTeam):
			apiError(cfg, w, http.StatusBadRequest, "Invalid team")
			return
		case errors.Is(err, errUnknownEvent):
			apiError(cfg, w, http.StatusBadRequest, "Invalid event")
			return
		case err != nil:
			apiError(cfg, w, http.StatusInternalServerError, "Failed to update scores")
			return
		}

		written, err := writeJSON(cfg, w, http.StatusOK, map[string]any{
			"success": true,
			"scores":  updated,
		})
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Score update %q/%q (%s) to %s in %s",
			req.Team,
			req.Event,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveEventConfig(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		payload := map[string]any{
			"events":         g.data.Events,
			"miniGames":      g.data.MiniGames,
			"scoringOptions": g.data.ScoringOptions,
			"teams":          g.data.teamNames(),
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, payload); err != nil {
			errs <- err
		}
	}
}

func serveUserScores(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		scores, err := g.UserScores(r.URL.Query().Get("name"))
		if err != nil {
			apiError(cfg, w, http.StatusNotFound, "User not found or not initialized.")
			return
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, scores); err != nil {
			errs <- err
		}
	}
}

func serveUserTeam(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		name := r.URL.Query().Get("name")
		if name == "" {
			apiError(cfg, w, http.StatusBadRequest, "Name parameter is required")
			return
		}

		team, isAdmin, err := g.TeamOf(name)
		if err != nil {
			apiError(cfg, w, http.StatusNotFound, "Player not found in any team")
			return
		}

		if isAdmin {
			_, _ = writeJSON(cfg, w, http.StatusOK, map[string]bool{"isAdmin": true})
			return
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, map[string]string{"team": team}); err != nil {
			errs <- err
		}
	}
}

func serveLeaderboard(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		leaderboard, err := g.Leaderboard()
		if err != nil {
			apiError(cfg, w, http.StatusInternalServerError, "Failed to fetch leaderboard")
			return
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, leaderboard); err != nil {
			errs <- err
		}
	}
}

func serveAdminState(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		state, err := g.AdminState(r.URL.Query().Get("name"))
		if err != nil {
			apiError(cfg, w, http.StatusForbidden, "Unauthorized: Admin access required")
			return
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, state); err != nil {
			errs <- err
		}
	}
}

type resetRequest struct {
	AdminName  string `json:"adminName"`
	PlayerName string `json:"playerName"`
}

func serveResetScore(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req resetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerName == "" {
			_, _ = writeJSON(cfg, w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "Invalid request body",
			})
			return
		}

		if err := g.ResetScore(req.AdminName, req.PlayerName); err != nil {
			_, _ = writeJSON(cfg, w, http.StatusForbidden, map[string]any{
				"success": false,
				"error":   "Unauthorized: Admin access required",
			})
			return
		}

		written, err := writeJSON(cfg, w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Successfully reset Assassins game score for " + req.PlayerName,
		})
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Score reset for %q (%s) to %s",
			req.PlayerName,
			humanReadableSize(int64(written)),
			realIP(r),
		)
	}
}

// registerGameRoutes wires the full JSON API under $prefix/api.
func registerGameRoutes(cfg *Config, g *Game, hub *liveHub, mux *httprouter.Router, errs chan<- error) {
	mux.POST(cfg.prefix+"/api/login", serveLogin(cfg, g, errs))
	mux.GET(cfg.prefix+"/api/names", serveNames(cfg, g, errs))
	mux.POST(cfg.prefix+"/api/guess", serveGuess(cfg, g, errs))
	mux.POST(cfg.prefix+"/api/theme", serveTheme(cfg, g, errs))
	mux.GET(cfg.prefix+"/api/teams", serveTeams(cfg, g, errs))
	mux.GET(cfg.prefix+"/api/scores", serveScores(cfg, g, errs))
	mux.GET(cfg.prefix+"/api/teams-scores", serveSingleTeamScores(cfg, g, errs))
	mux.POST(cfg.prefix+"/api/scores/update", serveScoreUpdate(cfg, g, errs))
	mux.GET(cfg.prefix+"/api/config/events", serveEventConfig(cfg, g, errs))
	mux.GET(cfg.prefix+"/api/user/scores", serveUserScores(cfg, g, errs))
	mux.GET(cfg.prefix+"/api/user/team", serveUserTeam(cfg, g, errs))
	mux.GET(cfg.prefix+"/api/leaderboard", serveLeaderboard(cfg, g, errs))
	mux.GET(cfg.prefix+"/api/admin/assassins-state", serveAdminState(cfg, g, errs))
	mux.POST(cfg.prefix+"/api/admin/reset-assassins-score", serveResetScore(cfg, g, errs))
	mux.GET(cfg.prefix+"/api/live", serveLive(cfg, g, hub))
	mux.GET(cfg.prefix+"/api/qr", serveQR(cfg))
}
