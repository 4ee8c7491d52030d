package services

import (
	"context"
	"testing"

	"pickem-app-go/models"
)

func seedRemotePick(repo *fakePickRepo, leagueID, displayName, gameID, team string) {
	pick := models.NewPickRecord(leagueID, displayName, gameID, team)
	repo.docs[pick.Key] = pick
}

func TestReconcileClearsStaleAndReappliesRemote(t *testing.T) {
	repo := newFakePickRepo()
	svc, store := newTestService(t, repo,
		futureGame("401", "Giants", "Cowboys"),
		futureGame("402", "Eagles", "Commanders"),
		futureGame("403", "Bears", "Packers"),
	)
	setProfile(t, svc, "Alex")

	// Local picks for all three games, remote knows only about 402
	for game, team := range map[string]string{"401": "Giants", "402": "Eagles", "403": "Packers"} {
		if err := svc.SetPick(game, team); err != nil {
			t.Fatal(err)
		}
	}
	seedRemotePick(repo, models.DefaultLeagueID, "Alex", "402", "Commanders")

	if err := svc.Reconcile(context.Background()); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	state := store.Load()
	if _, ok := state.Picks["401"]; ok {
		t.Error("expected unsaved pick for 401 cleared")
	}
	if _, ok := state.Picks["403"]; ok {
		t.Error("expected unsaved pick for 403 cleared")
	}
	if state.Pick("402") != "Commanders" {
		t.Errorf("expected remote value reapplied, got %q", state.Pick("402"))
	}
}

func TestReconcileNeverWritesRemote(t *testing.T) {
	repo := newFakePickRepo()
	svc, _ := newTestService(t, repo,
		futureGame("401", "Giants", "Cowboys"),
		futureGame("402", "Eagles", "Commanders"),
	)
	setProfile(t, svc, "Alex")

	if err := svc.SetPick("401", "Giants"); err != nil {
		t.Fatal(err)
	}
	seedRemotePick(repo, models.DefaultLeagueID, "Alex", "402", "Eagles")

	if err := svc.Reconcile(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Clearing and reapplying are local-only operations
	if repo.upserts != 0 {
		t.Errorf("reconciliation must not upsert, saw %d upserts", repo.upserts)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	repo := newFakePickRepo()
	svc, store := newTestService(t, repo,
		futureGame("401", "Giants", "Cowboys"),
		futureGame("402", "Eagles", "Commanders"),
	)
	setProfile(t, svc, "Alex")

	if err := svc.SetPick("401", "Giants"); err != nil {
		t.Fatal(err)
	}
	seedRemotePick(repo, models.DefaultLeagueID, "Alex", "402", "Eagles")

	if err := svc.Reconcile(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := store.Load()

	if err := svc.Reconcile(context.Background()); err != nil {
		t.Fatal(err)
	}
	second := store.Load()

	if len(first.Picks) != len(second.Picks) {
		t.Fatalf("second pass changed pick count: %v vs %v", first.Picks, second.Picks)
	}
	for game, team := range first.Picks {
		if second.Picks[game] != team {
			t.Errorf("second pass changed pick for %s: %q vs %q", game, team, second.Picks[game])
		}
	}
}

func TestReconcileReappliesLockedGames(t *testing.T) {
	repo := newFakePickRepo()
	svc, store := newTestService(t, repo, lockedGame("401", "Giants", "Cowboys"))
	setProfile(t, svc, "Alex")

	// A pick saved before kickoff is restored even though the game is locked
	seedRemotePick(repo, models.DefaultLeagueID, "Alex", "401", "Giants")

	if err := svc.Reconcile(context.Background()); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if store.Load().Pick("401") != "Giants" {
		t.Error("expected saved pick reapplied on locked game")
	}
}

func TestReconcileNoopWithoutProfile(t *testing.T) {
	repo := newFakePickRepo()
	svc, store := newTestService(t, repo, futureGame("401", "Giants", "Cowboys"))

	// No display name: nothing to match remote picks against
	if err := svc.SetPick("401", "Giants"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reconcile(context.Background()); err != nil {
		t.Fatal(err)
	}

	if repo.queries != 0 {
		t.Errorf("expected no remote queries without a profile, saw %d", repo.queries)
	}
	if store.Load().Pick("401") != "Giants" {
		t.Error("local picks must be untouched without a profile")
	}
}

func TestReconcileNoopInLocalOnlyMode(t *testing.T) {
	svc, store := newTestService(t, nil, futureGame("401", "Giants", "Cowboys"))
	setProfile(t, svc, "Alex")

	if err := svc.SetPick("401", "Giants"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reconcile(context.Background()); err != nil {
		t.Fatalf("Reconcile must be a no-op without a repo: %v", err)
	}
	if store.Load().Pick("401") != "Giants" {
		t.Error("local picks must survive reconcile in local-only mode")
	}
}

func TestReconcileIgnoresOtherParticipants(t *testing.T) {
	repo := newFakePickRepo()
	svc, store := newTestService(t, repo, futureGame("401", "Giants", "Cowboys"))
	setProfile(t, svc, "Alex")

	// Another league member's pick must not leak into Alex's state
	seedRemotePick(repo, models.DefaultLeagueID, "Jordan", "401", "Cowboys")

	if err := svc.Reconcile(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := store.Load().Pick("401"); got != "" {
		t.Errorf("expected no pick for Alex, got %q", got)
	}
}
