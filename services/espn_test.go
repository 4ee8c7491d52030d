package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizeEventsMissingOptionalFields(t *testing.T) {
	events := []espnEvent{
		{
			ID: "401",
			Competitions: []espnCompetition{
				{
					Competitors: []espnCompetitor{
						{HomeAway: "home", Team: espnTeam{DisplayName: "Giants"}},
						{HomeAway: "away", Team: espnTeam{DisplayName: "Cowboys"}},
					},
				},
			},
		},
	}

	games := NormalizeEvents(events)
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}

	g := games[0]
	if g.Home != "Giants" || g.Away != "Cowboys" {
		t.Errorf("unexpected teams: home=%q away=%q", g.Home, g.Away)
	}
	if g.HomeLogo != "" || g.AwayLogo != "" {
		t.Errorf("expected empty logos, got home=%q away=%q", g.HomeLogo, g.AwayLogo)
	}
	if g.HomeRecord != "" || g.AwayRecord != "" {
		t.Errorf("expected empty records, got home=%q away=%q", g.HomeRecord, g.AwayRecord)
	}
	if g.Kickoff != nil {
		t.Errorf("expected nil kickoff, got %v", g.Kickoff)
	}
	if g.KickoffText != "TBD" {
		t.Errorf("expected kickoff text TBD, got %q", g.KickoffText)
	}
	if g.Completed {
		t.Error("expected game not completed")
	}
}

func TestNormalizeEventFutureKickoff(t *testing.T) {
	future := time.Now().Add(48 * time.Hour).UTC()
	events := []espnEvent{
		{
			ID:   "402",
			Date: future.Format("2006-01-02T15:04Z"),
			Competitions: []espnCompetition{
				{
					Competitors: []espnCompetitor{
						{HomeAway: "home", Team: espnTeam{DisplayName: "Giants"}},
						{HomeAway: "away", Team: espnTeam{DisplayName: "Cowboys"}},
					},
				},
			},
		},
	}

	g := NormalizeEvents(events)[0]
	if g.Kickoff == nil {
		t.Fatal("expected parsed kickoff")
	}
	if !g.Kickoff.After(time.Now()) {
		t.Errorf("expected future kickoff, got %v", g.Kickoff)
	}
	if g.Completed {
		t.Error("expected game not completed")
	}
	if g.Locked(time.Now()) {
		t.Error("future game must not be locked")
	}
}

func TestTeamLogoStrategies(t *testing.T) {
	tests := []struct {
		name string
		team espnTeam
		want string
	}{
		{
			name: "logos array href first",
			team: espnTeam{
				Logos: []espnLogo{{Href: "https://cdn.example.com/a.png"}},
				Logo:  "https://cdn.example.com/ignored.png",
			},
			want: "https://cdn.example.com/a.png",
		},
		{
			name: "logos array url fallback",
			team: espnTeam{Logos: []espnLogo{{URL: "https://cdn.example.com/b.png"}}},
			want: "https://cdn.example.com/b.png",
		},
		{
			name: "singular logo field",
			team: espnTeam{Logo: "https://cdn.example.com/c.png"},
			want: "https://cdn.example.com/c.png",
		},
		{
			name: "official logo field",
			team: espnTeam{OfficialLogo: &espnLogo{Href: "https://cdn.example.com/d.png"}},
			want: "https://cdn.example.com/d.png",
		},
		{
			name: "protocol-relative upgraded to https",
			team: espnTeam{Logo: "//a.espncdn.com/i/teamlogos/nfl/500/nyg.png"},
			want: "https://a.espncdn.com/i/teamlogos/nfl/500/nyg.png",
		},
		{
			name: "whitespace trimmed",
			team: espnTeam{Logo: "  https://cdn.example.com/e.png  "},
			want: "https://cdn.example.com/e.png",
		},
		{
			name: "no logo anywhere",
			team: espnTeam{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := teamLogo(tt.team); got != tt.want {
				t.Errorf("teamLogo() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTeamRecordStrategies(t *testing.T) {
	tests := []struct {
		name       string
		competitor espnCompetitor
		want       string
	}{
		{
			name: "total-typed entry preferred",
			competitor: espnCompetitor{Records: []espnRecordEntry{
				{Type: "home", Summary: "1-0"},
				{Type: "total", Summary: "3-1"},
			}},
			want: "3-1",
		},
		{
			name: "overall-typed entry preferred",
			competitor: espnCompetitor{Records: []espnRecordEntry{
				{Type: "road", Summary: "0-2"},
				{Type: "overall", DisplayValue: "2-2"},
			}},
			want: "2-2",
		},
		{
			name: "first entry fallback",
			competitor: espnCompetitor{Records: []espnRecordEntry{
				{Type: "home", Summary: "1-1"},
			}},
			want: "1-1",
		},
		{
			name:       "singular record fallback",
			competitor: espnCompetitor{Record: &espnRecordEntry{Summary: "4-0"}},
			want:       "4-0",
		},
		{
			name:       "no record anywhere",
			competitor: espnCompetitor{},
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := teamRecord(tt.competitor); got != tt.want {
				t.Errorf("teamRecord() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTeamNameResolutionOrder(t *testing.T) {
	tests := []struct {
		name string
		team espnTeam
		want string
	}{
		{"display name first", espnTeam{DisplayName: "New York Giants", Name: "Giants", Abbreviation: "NYG"}, "New York Giants"},
		{"short name second", espnTeam{ShortDisplayName: "Giants", Abbreviation: "NYG"}, "Giants"},
		{"plain name third", espnTeam{Name: "Giants", Abbreviation: "NYG"}, "Giants"},
		{"abbreviation last", espnTeam{Abbreviation: "NYG"}, "NYG"},
		{"empty when nothing", espnTeam{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := teamName(tt.team); got != tt.want {
				t.Errorf("teamName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeEventPositionalFallback(t *testing.T) {
	tests := []struct {
		name        string
		competitors []espnCompetitor
		wantHome    string
		wantAway    string
	}{
		{
			// No flags: first competitor is away, second is home
			name: "no flags",
			competitors: []espnCompetitor{
				{Team: espnTeam{DisplayName: "Cowboys"}},
				{Team: espnTeam{DisplayName: "Giants"}},
			},
			wantHome: "Giants",
			wantAway: "Cowboys",
		},
		{
			// Flagged home first, unflagged second: the leftover fills away
			name: "home flagged first",
			competitors: []espnCompetitor{
				{HomeAway: "home", Team: espnTeam{DisplayName: "Giants"}},
				{Team: espnTeam{DisplayName: "Cowboys"}},
			},
			wantHome: "Giants",
			wantAway: "Cowboys",
		},
		{
			name: "home flagged second",
			competitors: []espnCompetitor{
				{Team: espnTeam{DisplayName: "Cowboys"}},
				{HomeAway: "home", Team: espnTeam{DisplayName: "Giants"}},
			},
			wantHome: "Giants",
			wantAway: "Cowboys",
		},
		{
			// Flagged away first, unflagged second: the leftover fills home
			name: "away flagged first",
			competitors: []espnCompetitor{
				{HomeAway: "away", Team: espnTeam{DisplayName: "Cowboys"}},
				{Team: espnTeam{DisplayName: "Giants"}},
			},
			wantHome: "Giants",
			wantAway: "Cowboys",
		},
		{
			name: "away flagged second",
			competitors: []espnCompetitor{
				{Team: espnTeam{DisplayName: "Giants"}},
				{HomeAway: "away", Team: espnTeam{DisplayName: "Cowboys"}},
			},
			wantHome: "Giants",
			wantAway: "Cowboys",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []espnEvent{
				{
					ID:           "403",
					Competitions: []espnCompetition{{Competitors: tt.competitors}},
				},
			}

			g := NormalizeEvents(events)[0]
			if g.Home != tt.wantHome {
				t.Errorf("Home = %q, want %q", g.Home, tt.wantHome)
			}
			if g.Away != tt.wantAway {
				t.Errorf("Away = %q, want %q", g.Away, tt.wantAway)
			}
			if g.Home == g.Away {
				t.Errorf("same team on both sides: %q", g.Home)
			}
		})
	}
}

func TestNormalizeEventWinnerOnlyWhenFlagged(t *testing.T) {
	completed := espnStatus{Type: espnStatusType{Completed: true, ShortDetail: "Final"}}

	tests := []struct {
		name       string
		homeWinner bool
		awayWinner bool
		want       string
	}{
		{"home flagged", true, false, "Giants"},
		{"away flagged", false, true, "Cowboys"},
		{"nobody flagged", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []espnEvent{
				{
					ID: "404",
					Competitions: []espnCompetition{
						{
							Status: &completed,
							Competitors: []espnCompetitor{
								{HomeAway: "home", Winner: tt.homeWinner, Team: espnTeam{DisplayName: "Giants"}},
								{HomeAway: "away", Winner: tt.awayWinner, Team: espnTeam{DisplayName: "Cowboys"}},
							},
						},
					},
				},
			}

			g := NormalizeEvents(events)[0]
			if !g.Completed {
				t.Error("expected completed game")
			}
			if g.StatusText != "Final" {
				t.Errorf("expected status Final, got %q", g.StatusText)
			}
			if g.WinnerTeam != tt.want {
				t.Errorf("WinnerTeam = %q, want %q", g.WinnerTeam, tt.want)
			}
		})
	}
}

func TestNormalizeEventStatusNesting(t *testing.T) {
	// Status can live on the event or the competition; competition wins
	events := []espnEvent{
		{
			ID:     "405",
			Status: &espnStatus{Type: espnStatusType{ShortDetail: "event level"}},
			Competitions: []espnCompetition{
				{
					Status: &espnStatus{Type: espnStatusType{ShortDetail: "competition level"}},
					Competitors: []espnCompetitor{
						{HomeAway: "home", Team: espnTeam{DisplayName: "Giants"}},
						{HomeAway: "away", Team: espnTeam{DisplayName: "Cowboys"}},
					},
				},
			},
		},
		{
			ID:     "406",
			Status: &espnStatus{Type: espnStatusType{ShortDetail: "event level"}},
			Competitions: []espnCompetition{
				{
					Competitors: []espnCompetitor{
						{HomeAway: "home", Team: espnTeam{DisplayName: "Giants"}},
					},
				},
			},
		},
	}

	games := NormalizeEvents(events)
	if games[0].StatusText != "competition level" {
		t.Errorf("expected competition-level status, got %q", games[0].StatusText)
	}
	if games[1].StatusText != "event level" {
		t.Errorf("expected event-level status fallback, got %q", games[1].StatusText)
	}
}

func TestGameIdentityStable(t *testing.T) {
	event := espnEvent{
		Date: "2026-09-13T17:00Z",
		Competitions: []espnCompetition{
			{
				Competitors: []espnCompetitor{
					{HomeAway: "away", Team: espnTeam{DisplayName: "Cowboys"}},
					{HomeAway: "home", Team: espnTeam{DisplayName: "Giants"}},
				},
			},
		},
	}

	first := NormalizeEvents([]espnEvent{event})[0]
	second := NormalizeEvents([]espnEvent{event})[0]

	if first.GameID == "" {
		t.Fatal("expected synthesized game ID")
	}
	if first.GameID != second.GameID {
		t.Errorf("game ID not stable across normalization: %q vs %q", first.GameID, second.GameID)
	}

	// Provider id wins when present
	event.ID = "401772510"
	withID := NormalizeEvents([]espnEvent{event})[0]
	if withID.GameID != "401772510" {
		t.Errorf("expected provider id, got %q", withID.GameID)
	}
}

func TestNormalizeEventBadDateNeverFails(t *testing.T) {
	events := []espnEvent{
		{
			ID:   "407",
			Date: "not-a-date",
			Competitions: []espnCompetition{
				{
					Competitors: []espnCompetitor{
						{HomeAway: "home", Team: espnTeam{DisplayName: "Giants"}},
						{HomeAway: "away", Team: espnTeam{DisplayName: "Cowboys"}},
					},
				},
			},
		},
	}

	g := NormalizeEvents(events)[0]
	if g.Kickoff != nil {
		t.Errorf("expected nil kickoff for unparseable date, got %v", g.Kickoff)
	}
	if g.KickoffText != "TBD" {
		t.Errorf("expected TBD, got %q", g.KickoffText)
	}
}

func TestNormalizeEventsPreservesOrderAndCount(t *testing.T) {
	events := []espnEvent{
		{ID: "1"},
		{ID: "2"},
		{ID: "3", Competitions: []espnCompetition{{}}},
	}

	games := NormalizeEvents(events)
	if len(games) != 3 {
		t.Fatalf("expected all 3 events kept, got %d", len(games))
	}
	for i, want := range []string{"1", "2", "3"} {
		if games[i].GameID != want {
			t.Errorf("order not preserved at %d: got %q, want %q", i, games[i].GameID, want)
		}
	}
}

func TestGetScoreboard(t *testing.T) {
	payload := `{
		"events": [
			{
				"id": "401772510",
				"date": "2026-09-13T17:00Z",
				"competitions": [
					{
						"competitors": [
							{
								"homeAway": "home",
								"team": {
									"displayName": "New York Giants",
									"logos": [{"href": "//a.espncdn.com/i/teamlogos/nfl/500/nyg.png"}]
								},
								"records": [{"type": "total", "summary": "2-1"}]
							},
							{
								"homeAway": "away",
								"team": {"displayName": "Dallas Cowboys", "logo": "https://a.espncdn.com/i/teamlogos/nfl/500/dal.png"},
								"record": {"summary": "3-0"}
							}
						]
					}
				]
			}
		]
	}`

	var gotCacheControl string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCacheControl = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer server.Close()

	svc := NewESPNService(server.URL, 5*time.Second)
	games, err := svc.GetScoreboard(context.Background(), "")
	if err != nil {
		t.Fatalf("GetScoreboard failed: %v", err)
	}
	if gotCacheControl != "no-cache" {
		t.Errorf("expected cache-bypassing fetch, got Cache-Control=%q", gotCacheControl)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}

	g := games[0]
	if g.GameID != "401772510" {
		t.Errorf("unexpected game ID %q", g.GameID)
	}
	if g.Home != "New York Giants" || g.Away != "Dallas Cowboys" {
		t.Errorf("unexpected teams: %q vs %q", g.Away, g.Home)
	}
	if g.HomeLogo != "https://a.espncdn.com/i/teamlogos/nfl/500/nyg.png" {
		t.Errorf("protocol-relative logo not upgraded: %q", g.HomeLogo)
	}
	if g.HomeRecord != "2-1" || g.AwayRecord != "3-0" {
		t.Errorf("unexpected records: home=%q away=%q", g.HomeRecord, g.AwayRecord)
	}
}

func TestGetScoreboardErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			svc := NewESPNService(server.URL, 5*time.Second)
			if _, err := svc.GetScoreboard(context.Background(), ""); err == nil {
				t.Error("expected fetch error")
			}
		})
	}
}

func TestGetScoreboardForwardsWeek(t *testing.T) {
	var gotWeek string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotWeek = r.URL.Query().Get("week")
		w.Write([]byte(`{"events": []}`))
	}))
	defer server.Close()

	svc := NewESPNService(server.URL, 5*time.Second)
	if _, err := svc.GetScoreboard(context.Background(), "7"); err != nil {
		t.Fatalf("GetScoreboard failed: %v", err)
	}
	if gotWeek != "7" {
		t.Errorf("expected week=7 forwarded, got %q", gotWeek)
	}
}
