package session

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

func testEnv(t *testing.T) *Environment {
	t.Helper()
	env := &Environment{Dir: t.TempDir()}
	if err := env.EnsureDir(); err != nil {
		t.Fatal(err)
	}
	return env
}

func TestHistoryAppendOrder(t *testing.T) {
	store := NewHistoryStore(testEnv(t))

	for i := 1; i <= 3; i++ {
		store.Append(Record{
			Template:        "t",
			DurationSeconds: i * 60,
			StartTS:         int64(1000 * i),
		})
	}

	records := store.List()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	// Newest first
	if records[0].StartTS != 3000 || records[2].StartTS != 1000 {
		t.Errorf("wrong order: %v, %v, %v", records[0].StartTS, records[1].StartTS, records[2].StartTS)
	}
}

func TestHistoryRoundTripFields(t *testing.T) {
	env := testEnv(t)
	store := NewHistoryStore(env)

	started := Record{
		Template:        "deep-work",
		DurationSeconds: 5400,
		StartTS:         time.Now().Unix(),
		DND:             true,
		Apps:            []string{"Slack", "https://example.com"},
		Cmds:            []string{"make watch"},
		TmuxSession:     "dayrun_deep",
		DetachedPID:     4242,
	}
	store.Append(started)

	finished := started.Finished(time.Now().Add(time.Minute))
	store.Append(finished)

	records := store.List()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	got := records[1]
	if got.EndTS != 0 {
		t.Errorf("start stub should have no end_ts, got %d", got.EndTS)
	}
	if got.Template != "deep-work" || got.DND != true || got.DetachedPID != 4242 {
		t.Errorf("fields lost in round trip: %+v", got)
	}
	if len(got.Apps) != 2 || got.Apps[1] != "https://example.com" {
		t.Errorf("apps lost in round trip: %v", got.Apps)
	}

	done := records[0]
	if done.EndTS == 0 {
		t.Error("finished record missing end_ts")
	}
	if done.EndTS < done.StartTS {
		t.Errorf("end_ts %d < start_ts %d", done.EndTS, done.StartTS)
	}
}

func TestHistoryAbsentEndTSOmitted(t *testing.T) {
	env := testEnv(t)
	store := NewHistoryStore(env)
	store.Append(Record{DurationSeconds: 60, StartTS: 1})

	data, err := os.ReadFile(env.HistoryPath())
	if err != nil {
		t.Fatal(err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, present := raw[0]["end_ts"]; present {
		t.Error("unfinished record should omit end_ts on disk")
	}
	if _, present := raw[0]["detached_pid"]; present {
		t.Error("foreground record should omit detached_pid on disk")
	}
}

func TestHistoryMissingFile(t *testing.T) {
	store := NewHistoryStore(testEnv(t))
	if got := store.List(); len(got) != 0 {
		t.Errorf("expected empty history, got %d records", len(got))
	}
}

func TestHistoryCorruptFile(t *testing.T) {
	env := testEnv(t)
	if err := os.WriteFile(env.HistoryPath(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewHistoryStore(env)
	if got := store.List(); got != nil {
		t.Errorf("corrupt history should read as empty, got %v", got)
	}

	// Appending over a corrupt file starts a fresh log
	store.Append(Record{DurationSeconds: 60, StartTS: 7})
	if got := store.List(); len(got) != 1 {
		t.Errorf("expected 1 record after append, got %d", len(got))
	}
}

func TestHistoryLast(t *testing.T) {
	store := NewHistoryStore(testEnv(t))
	for i := 0; i < 5; i++ {
		store.Append(Record{DurationSeconds: 60, StartTS: int64(i)})
	}

	last := store.Last(2)
	if len(last) != 2 {
		t.Fatalf("expected 2, got %d", len(last))
	}
	if last[0].StartTS != 4 {
		t.Errorf("Last should keep newest first, got start_ts %d", last[0].StartTS)
	}

	if got := store.Last(100); len(got) != 5 {
		t.Errorf("Last beyond length should return all, got %d", len(got))
	}
	if got := store.Last(0); len(got) != 0 {
		t.Errorf("Last(0) should be empty, got %d", len(got))
	}
}
