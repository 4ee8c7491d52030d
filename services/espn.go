package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pickem-app-go/logging"
	"pickem-app-go/models"
)

// ESPNService fetches the scoreboard feed and normalizes it into GameRecords
type ESPNService struct {
	client  *http.Client
	baseURL string
	logger  *logging.Logger
}

// NewESPNService creates a new ESPN scoreboard service
func NewESPNService(baseURL string, timeout time.Duration) *ESPNService {
	return &ESPNService{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		logger:  logging.WithPrefix("ESPN"),
	}
}

// ESPN API response structures. Only the fields the normalizer reads are
// declared; the feed carries far more. Several fields exist in multiple
// shapes across feed revisions (logo, logos[], officialLogo; record,
// records[]), so the structs keep all known variants.
type espnResponse struct {
	Events []espnEvent `json:"events"`
}

type espnEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Status       *espnStatus       `json:"status,omitempty"`
	Competitions []espnCompetition `json:"competitions"`
}

type espnCompetition struct {
	ID          string           `json:"id"`
	Date        string           `json:"date"`
	Status      *espnStatus      `json:"status,omitempty"`
	Competitors []espnCompetitor `json:"competitors"`
}

type espnStatus struct {
	Type         espnStatusType `json:"type"`
	Period       int            `json:"period"`
	DisplayClock string         `json:"displayClock,omitempty"`
}

type espnStatusType struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	ShortDetail string `json:"shortDetail"`
}

type espnCompetitor struct {
	ID       string            `json:"id"`
	HomeAway string            `json:"homeAway"`
	Winner   bool              `json:"winner"`
	Team     espnTeam          `json:"team"`
	Records  []espnRecordEntry `json:"records,omitempty"`
	Record   *espnRecordEntry  `json:"record,omitempty"`
}

type espnTeam struct {
	ID               string     `json:"id"`
	DisplayName      string     `json:"displayName"`
	ShortDisplayName string     `json:"shortDisplayName"`
	Name             string     `json:"name"`
	Abbreviation     string     `json:"abbreviation"`
	Logo             string     `json:"logo,omitempty"`
	Logos            []espnLogo `json:"logos,omitempty"`
	OfficialLogo     *espnLogo  `json:"officialLogo,omitempty"`
}

type espnLogo struct {
	Href string `json:"href,omitempty"`
	URL  string `json:"url,omitempty"`
}

type espnRecordEntry struct {
	Type         string `json:"type,omitempty"`
	Summary      string `json:"summary,omitempty"`
	DisplayValue string `json:"displayValue,omitempty"`
}

// GetScoreboard fetches the scoreboard and returns normalized game records
// in feed order. The fetch bypasses caches so a refresh always reflects
// current data. An optional week filter is forwarded to the feed.
func (e *ESPNService) GetScoreboard(ctx context.Context, week string) ([]models.GameRecord, error) {
	feedURL := e.baseURL
	if week != "" {
		sep := "?"
		if strings.Contains(feedURL, "?") {
			sep = "&"
		}
		feedURL = feedURL + sep + "week=" + url.QueryEscape(week)
	}

	e.logger.Debugf("Fetching scoreboard from %s", feedURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build scoreboard request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}
	defer resp.Body.Close()

	e.logger.Debugf("Scoreboard response status %d", resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoreboard feed returned status %d", resp.StatusCode)
	}

	var feed espnResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode scoreboard response: %w", err)
	}

	games := NormalizeEvents(feed.Events)
	e.logger.Infof("Received %d events, normalized to %d games", len(feed.Events), len(games))
	return games, nil
}

// HealthCheck verifies the feed endpoint is accessible
func (e *ESPNService) HealthCheck() bool {
	req, err := http.NewRequest(http.MethodHead, e.baseURL, nil)
	if err != nil {
		return false
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// NormalizeEvents converts feed events to GameRecords, one per event, order
// preserved. Malformed or missing optional fields degrade to empty/null
// defaults; no event is ever discarded.
func NormalizeEvents(events []espnEvent) []models.GameRecord {
	games := make([]models.GameRecord, 0, len(events))
	for _, event := range events {
		games = append(games, normalizeEvent(event))
	}
	return games
}

// logoStrategies is the ordered list of logo extraction strategies, applied
// until one yields a non-empty value. The feed places team logos in several
// layouts depending on sport and feed revision.
var logoStrategies = []func(t espnTeam) string{
	func(t espnTeam) string {
		if len(t.Logos) == 0 {
			return ""
		}
		if t.Logos[0].Href != "" {
			return t.Logos[0].Href
		}
		return t.Logos[0].URL
	},
	func(t espnTeam) string { return t.Logo },
	func(t espnTeam) string {
		if t.OfficialLogo == nil {
			return ""
		}
		if t.OfficialLogo.Href != "" {
			return t.OfficialLogo.Href
		}
		return t.OfficialLogo.URL
	},
}

// recordStrategies is the ordered list of win-loss record extraction
// strategies: a "total"/"overall"-typed entry wins, then the first entry,
// then the singular record field.
var recordStrategies = []func(c espnCompetitor) string{
	func(c espnCompetitor) string {
		for _, r := range c.Records {
			if r.Type == "total" || r.Type == "overall" {
				return recordSummary(r)
			}
		}
		return ""
	},
	func(c espnCompetitor) string {
		if len(c.Records) == 0 {
			return ""
		}
		return recordSummary(c.Records[0])
	},
	func(c espnCompetitor) string {
		if c.Record == nil {
			return ""
		}
		return recordSummary(*c.Record)
	},
}

func recordSummary(r espnRecordEntry) string {
	if r.Summary != "" {
		return r.Summary
	}
	return r.DisplayValue
}

// teamName resolves a display name: displayName, then short name, then
// abbreviation, then empty. A missing name never fails the record.
func teamName(t espnTeam) string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	if t.ShortDisplayName != "" {
		return t.ShortDisplayName
	}
	if t.Name != "" {
		return t.Name
	}
	return t.Abbreviation
}

// teamLogo runs the logo strategy list and normalizes the result:
// protocol-relative URLs are upgraded to https, values are trimmed.
func teamLogo(t espnTeam) string {
	for _, strategy := range logoStrategies {
		if href := strings.TrimSpace(strategy(t)); href != "" {
			if strings.HasPrefix(href, "//") {
				href = "https:" + href
			}
			return href
		}
	}
	return ""
}

// teamRecord runs the record strategy list.
func teamRecord(c espnCompetitor) string {
	for _, strategy := range recordStrategies {
		if summary := strategy(c); summary != "" {
			return summary
		}
	}
	return ""
}

// kickoffFormats are tried in order. The feed usually emits minute precision
// like "2024-09-08T00:20Z" but second precision and offsets also occur.
var kickoffFormats = []string{
	"2006-01-02T15:04Z",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
}

// parseKickoff parses the first parseable date representation. On failure the
// timestamp is nil and the text is "TBD"; parse problems never propagate.
func parseKickoff(dates ...string) (*time.Time, string) {
	for _, raw := range dates {
		if raw == "" {
			continue
		}
		for _, format := range kickoffFormats {
			if dt, err := time.Parse(format, raw); err == nil {
				utc := dt.UTC()
				return &utc, utc.Format(http.TimeFormat)
			}
		}
	}
	return nil, "TBD"
}

// normalizeEvent converts a single feed event to a GameRecord
func normalizeEvent(event espnEvent) models.GameRecord {
	var comp espnCompetition
	if len(event.Competitions) > 0 {
		comp = event.Competitions[0]
	}

	game := models.GameRecord{}

	var homeSeen, awaySeen bool
	placed := make([]bool, len(comp.Competitors))
	for i, c := range comp.Competitors {
		name := teamName(c.Team)
		logo := teamLogo(c.Team)
		record := teamRecord(c)

		switch c.HomeAway {
		case "home":
			homeSeen = true
			placed[i] = true
			game.Home, game.HomeLogo, game.HomeRecord = name, logo, record
			if c.Winner {
				game.WinnerTeam = name
			}
		case "away":
			awaySeen = true
			placed[i] = true
			game.Away, game.AwayLogo, game.AwayRecord = name, logo, record
			if c.Winner {
				game.WinnerTeam = name
			}
		}
	}

	// Positional fallback for competitors the homeAway flag did not place:
	// of the leftovers, in feed order, the first fills the open away slot and
	// the next fills home. A competitor already placed by its flag is never
	// reused, so a half-flagged pair still yields both participants.
	for i, c := range comp.Competitors {
		if placed[i] {
			continue
		}
		name := teamName(c.Team)
		if !awaySeen {
			awaySeen = true
			game.Away, game.AwayLogo, game.AwayRecord = name, teamLogo(c.Team), teamRecord(c)
			if c.Winner {
				game.WinnerTeam = name
			}
			continue
		}
		if !homeSeen {
			homeSeen = true
			game.Home, game.HomeLogo, game.HomeRecord = name, teamLogo(c.Team), teamRecord(c)
			if c.Winner {
				game.WinnerTeam = name
			}
			continue
		}
		break
	}

	game.Kickoff, game.KickoffText = parseKickoff(event.Date, comp.Date)

	// Status lives at varying nesting across feed revisions; prefer the
	// competition-level object.
	status := comp.Status
	if status == nil {
		status = event.Status
	}
	if status != nil {
		game.Completed = status.Type.Completed
		game.StatusText = statusText(status)
	}

	game.GameID = gameIdentity(event, comp, game)
	return game
}

// statusText resolves a short human-readable game state
func statusText(status *espnStatus) string {
	t := status.Type
	if t.ShortDetail != "" {
		return t.ShortDetail
	}
	if t.Description != "" {
		return t.Description
	}
	if t.Completed {
		return "Final"
	}
	return t.Name
}

// gameIdentity resolves a stable game identifier: provider event id, then
// competition id, then a synthesized home-away-date key. The synthesized key
// is derived only from feed values so repeated fetches of the same matchup
// produce the same identity and local picks keyed by it remain valid.
func gameIdentity(event espnEvent, comp espnCompetition, game models.GameRecord) string {
	if event.ID != "" {
		return event.ID
	}
	if comp.ID != "" {
		return comp.ID
	}
	return fmt.Sprintf("%s-%s-%s", game.Home, game.Away, event.Date)
}
