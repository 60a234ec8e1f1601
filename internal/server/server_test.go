package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkarlsen/chorecoin/internal/database"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(New(db, logger).Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func createProfile(t *testing.T, ts *httptest.Server, name string) {
	t.Helper()
	status := doJSON(t, ts, "POST", "/api/profiles", map[string]string{"name": name, "age": "8"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create profile: status %d", status)
	}
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestMissionCoinFlow(t *testing.T) {
	ts := setupTestServer(t)
	createProfile(t, ts, "Ana")

	var act struct {
		ID string `json:"id"`
	}
	status := doJSON(t, ts, "POST", "/api/activities", map[string]any{
		"name":       "Practice piano",
		"recurrence": "weekly",
		"days":       []string{"Monday", "Wednesday", "Friday"},
	}, &act)
	if status != http.StatusCreated {
		t.Fatalf("create activity: status %d", status)
	}

	toggle := func(date string) int {
		var out struct {
			CoinDelta int `json:"coinDelta"`
		}
		if s := doJSON(t, ts, "POST", "/api/activities/"+act.ID+"/toggle", map[string]string{"date": date}, &out); s != http.StatusOK {
			t.Fatalf("toggle %s: status %d", date, s)
		}
		return out.CoinDelta
	}

	if d := toggle("2024-03-11"); d != 0 {
		t.Errorf("Monday delta = %d, want 0", d)
	}
	if d := toggle("2024-03-13"); d != 0 {
		t.Errorf("Wednesday delta = %d, want 0", d)
	}
	if d := toggle("2024-03-15"); d != 1 {
		t.Errorf("Friday delta = %d, want 1", d)
	}

	var agent struct {
		Coins int `json:"coins"`
	}
	if s := doJSON(t, ts, "GET", "/api/profile", nil, &agent); s != http.StatusOK {
		t.Fatalf("get profile: status %d", s)
	}
	if agent.Coins != 1 {
		t.Errorf("coins = %d, want 1", agent.Coins)
	}

	// Un-completing a day revokes the coin.
	if d := toggle("2024-03-13"); d != -1 {
		t.Errorf("un-complete delta = %d, want -1", d)
	}
}

func TestWeekViewResolvesOverrides(t *testing.T) {
	ts := setupTestServer(t)
	createProfile(t, ts, "Ana")

	var act struct {
		ID string `json:"id"`
	}
	doJSON(t, ts, "POST", "/api/activities", map[string]any{
		"name":       "Walk the dog",
		"recurrence": "weekly",
		"days":       []string{"Tuesday"},
	}, &act)

	status := doJSON(t, ts, "PUT", "/api/activities/"+act.ID+"/override", map[string]any{
		"week": "2024-03-10",
		"name": "Walk the dog (grandma's)",
		"days": []string{"Saturday"},
	}, nil)
	if status != http.StatusNoContent {
		t.Fatalf("override: status %d", status)
	}

	var view struct {
		WeekID     string `json:"weekId"`
		Activities []struct {
			Name      string  `json:"name"`
			Scheduled [7]bool `json:"scheduled"`
		} `json:"activities"`
	}
	if s := doJSON(t, ts, "GET", "/api/week?date=2024-03-12", nil, &view); s != http.StatusOK {
		t.Fatalf("week view: status %d", s)
	}
	if view.WeekID != "2024-03-10" {
		t.Errorf("weekId = %q", view.WeekID)
	}
	if len(view.Activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(view.Activities))
	}
	a := view.Activities[0]
	if a.Name != "Walk the dog (grandma's)" {
		t.Errorf("name = %q, want the override", a.Name)
	}
	if a.Scheduled[2] || !a.Scheduled[6] {
		t.Errorf("scheduled = %v, want Saturday only", a.Scheduled)
	}

	// The next week falls back to the base schedule and name.
	if s := doJSON(t, ts, "GET", "/api/week?date=2024-03-19", nil, &view); s != http.StatusOK {
		t.Fatalf("week view: status %d", s)
	}
	a = view.Activities[0]
	if a.Name != "Walk the dog" {
		t.Errorf("next week name = %q, want base", a.Name)
	}
	if !a.Scheduled[2] || a.Scheduled[6] {
		t.Errorf("next week scheduled = %v, want Tuesday only", a.Scheduled)
	}
}

func TestDeleteWeekHidesActivity(t *testing.T) {
	ts := setupTestServer(t)
	createProfile(t, ts, "Ana")

	var act struct {
		ID string `json:"id"`
	}
	doJSON(t, ts, "POST", "/api/activities", map[string]any{
		"name":       "Tidy room",
		"recurrence": "weekly",
		"days":       []string{"Monday"},
	}, &act)

	status := doJSON(t, ts, "POST", "/api/activities/"+act.ID+"/delete-week", map[string]string{"week": "2024-03-10"}, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete-week: status %d", status)
	}

	var view struct {
		Activities []any `json:"activities"`
	}
	doJSON(t, ts, "GET", "/api/week?date=2024-03-11", nil, &view)
	if len(view.Activities) != 0 {
		t.Errorf("deleted week shows %d activities, want 0", len(view.Activities))
	}

	doJSON(t, ts, "GET", "/api/week?date=2024-03-18", nil, &view)
	if len(view.Activities) != 1 {
		t.Errorf("next week shows %d activities, want 1", len(view.Activities))
	}
}

func TestRewardRedemptionFlow(t *testing.T) {
	ts := setupTestServer(t)
	createProfile(t, ts, "Ana")

	// Earn a coin with a one-off mission.
	var act struct {
		ID string `json:"id"`
	}
	doJSON(t, ts, "POST", "/api/activities", map[string]any{
		"name":       "Dentist",
		"recurrence": "once",
		"date":       "2024-03-13",
	}, &act)
	doJSON(t, ts, "POST", "/api/activities/"+act.ID+"/toggle", map[string]string{"date": "2024-03-13"}, nil)

	var reward struct {
		ID string `json:"id"`
	}
	if s := doJSON(t, ts, "POST", "/api/rewards", map[string]any{"name": "Sticker", "cost": 1}, &reward); s != http.StatusCreated {
		t.Fatalf("add reward: status %d", s)
	}

	var rec struct {
		UniqueID string `json:"uniqueId"`
		Used     bool   `json:"used"`
	}
	if s := doJSON(t, ts, "POST", "/api/rewards/"+reward.ID+"/redeem", nil, &rec); s != http.StatusCreated {
		t.Fatalf("redeem: status %d", s)
	}
	if rec.UniqueID == "" || rec.Used {
		t.Errorf("record = %+v", rec)
	}

	var view struct {
		Coins           int   `json:"coins"`
		Rewards         []any `json:"rewards"`
		RedeemedRewards []any `json:"redeemedRewards"`
	}
	doJSON(t, ts, "GET", "/api/rewards", nil, &view)
	if view.Coins != 0 || len(view.Rewards) != 0 || len(view.RedeemedRewards) != 1 {
		t.Errorf("view = %+v", view)
	}

	if s := doJSON(t, ts, "POST", "/api/redeemed/"+rec.UniqueID+"/toggle-used", nil, nil); s != http.StatusNoContent {
		t.Errorf("toggle-used: status %d", s)
	}
}

func TestRedeemInsufficientCoins(t *testing.T) {
	ts := setupTestServer(t)
	createProfile(t, ts, "Ana")

	var reward struct {
		ID string `json:"id"`
	}
	doJSON(t, ts, "POST", "/api/rewards", map[string]any{"name": "Pony", "cost": 1000}, &reward)

	if s := doJSON(t, ts, "POST", "/api/rewards/"+reward.ID+"/redeem", nil, nil); s != http.StatusBadRequest {
		t.Errorf("redeem: status %d, want 400", s)
	}

	var view struct {
		Rewards []any `json:"rewards"`
	}
	doJSON(t, ts, "GET", "/api/rewards", nil, &view)
	if len(view.Rewards) != 1 {
		t.Error("rejected redemption must leave the catalog intact")
	}
}

func TestProfileValidationAndRename(t *testing.T) {
	ts := setupTestServer(t)
	createProfile(t, ts, "Ana")
	createProfile(t, ts, "Bea")

	if s := doJSON(t, ts, "POST", "/api/profiles", map[string]string{"name": "ana"}, nil); s != http.StatusConflict {
		t.Errorf("duplicate create: status %d, want 409", s)
	}

	// Bea is active; renaming her to Ana must be rejected.
	if s := doJSON(t, ts, "PUT", "/api/profile", map[string]string{"name": "ANA", "age": "9"}, nil); s != http.StatusConflict {
		t.Errorf("rename collision: status %d, want 409", s)
	}

	if s := doJSON(t, ts, "PUT", "/api/profile", map[string]string{"name": "Clara", "age": "9"}, nil); s != http.StatusOK {
		t.Errorf("rename: status %d, want 200", s)
	}

	var list struct {
		Profiles []string `json:"profiles"`
	}
	doJSON(t, ts, "GET", "/api/profiles", nil, &list)
	want := map[string]bool{"Ana": true, "Clara": true}
	if len(list.Profiles) != 2 {
		t.Fatalf("profiles = %v", list.Profiles)
	}
	for _, n := range list.Profiles {
		if !want[n] {
			t.Errorf("unexpected profile %q", n)
		}
	}
}

func TestPINProtectedProfile(t *testing.T) {
	ts := setupTestServer(t)
	if s := doJSON(t, ts, "POST", "/api/profiles", map[string]string{"name": "Ana", "age": "8", "pin": "1234"}, nil); s != http.StatusCreated {
		t.Fatalf("create: status %d", s)
	}
	doJSON(t, ts, "POST", "/api/profile/logout", nil, nil)

	if s := doJSON(t, ts, "POST", "/api/profiles/select", map[string]string{"name": "Ana", "pin": "0000"}, nil); s != http.StatusForbidden {
		t.Errorf("wrong pin: status %d, want 403", s)
	}
	if s := doJSON(t, ts, "POST", "/api/profiles/select", map[string]string{"name": "Ana", "pin": "1234"}, nil); s != http.StatusOK {
		t.Errorf("right pin: status %d, want 200", s)
	}
}

func TestActivityValidationErrors(t *testing.T) {
	ts := setupTestServer(t)
	createProfile(t, ts, "Ana")

	cases := []map[string]any{
		{"name": "", "recurrence": "weekly", "days": []string{"Monday"}},
		{"name": "x", "recurrence": "weekly"},
		{"name": "x", "recurrence": "once"},
		{"name": "x", "recurrence": "weekly", "days": []string{"Funday"}},
	}
	for i, body := range cases {
		if s := doJSON(t, ts, "POST", "/api/activities", body, nil); s != http.StatusBadRequest {
			t.Errorf("case %d: status %d, want 400", i, s)
		}
	}
}

func TestMutationsWithoutProfile(t *testing.T) {
	ts := setupTestServer(t)

	status := doJSON(t, ts, "POST", "/api/activities", map[string]any{
		"name": "x", "recurrence": "weekly", "days": []string{"Monday"},
	}, nil)
	if status != http.StatusConflict {
		t.Errorf("status = %d, want 409 with no active profile", status)
	}
}

func TestUnknownActivityToggleIsNoop(t *testing.T) {
	ts := setupTestServer(t)
	createProfile(t, ts, "Ana")

	var out struct {
		CoinDelta int `json:"coinDelta"`
	}
	status := doJSON(t, ts, "POST", fmt.Sprintf("/api/activities/%s/toggle", "no-such-id"), map[string]string{"date": "2024-03-11"}, &out)
	if status != http.StatusOK || out.CoinDelta != 0 {
		t.Errorf("status = %d delta = %d, want 200/0", status, out.CoinDelta)
	}
}
