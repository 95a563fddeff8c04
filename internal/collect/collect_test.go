package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/olareaux/chessdata/internal/normalize"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeFetcher serves canned bundles and per-player failures.
type fakeFetcher struct {
	players   []string
	listErr   error
	stats     map[string]normalize.Bundle
	profiles  map[string]normalize.Bundle
	statsErr  map[string]error
	statCalls int
}

func (f *fakeFetcher) ListTitledPlayers(ctx context.Context, title string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.players, nil
}

func (f *fakeFetcher) FetchStats(ctx context.Context, player string) (normalize.Bundle, error) {
	f.statCalls++
	if err := f.statsErr[player]; err != nil {
		return nil, err
	}
	if b, ok := f.stats[player]; ok {
		return b, nil
	}
	return normalize.Bundle{}, nil
}

func (f *fakeFetcher) FetchProfile(ctx context.Context, player string) (normalize.Bundle, error) {
	if b, ok := f.profiles[player]; ok {
		return b, nil
	}
	return normalize.Bundle{"country": "US"}, nil
}

func TestTitle_SkipsFailedPlayerAndContinues(t *testing.T) {
	fetcher := &fakeFetcher{
		players:  []string{"alice", "bob", "carol"},
		statsErr: map[string]error{"bob": errors.New("connection reset")},
	}

	dataset, result, err := Title(context.Background(), fetcher, "GM", discard)
	if err != nil {
		t.Fatalf("Title error: %v", err)
	}
	if result.Recorded != 2 || result.Skipped != 1 {
		t.Errorf("result = %s, want recorded=2 skipped=1", result.Summary())
	}
	if dataset.Len() != 2 {
		t.Errorf("dataset rows = %d, want 2", dataset.Len())
	}
	if _, ok := dataset.Get("bob"); ok {
		t.Error("failed player bob should not be in the dataset")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "bob") {
		t.Errorf("Errors = %v, want one diagnostic naming bob", result.Errors)
	}
	// carol must still have been fetched after bob failed
	if fetcher.statCalls != 3 {
		t.Errorf("stat calls = %d, want 3", fetcher.statCalls)
	}
}

func TestTitle_MembershipListFailureIsFatal(t *testing.T) {
	fetcher := &fakeFetcher{listErr: errors.New("status 503")}
	if _, _, err := Title(context.Background(), fetcher, "GM", discard); err == nil {
		t.Fatal("expected error when membership list fails")
	}
}

func TestTitle_MissingCountrySkipsPlayer(t *testing.T) {
	fetcher := &fakeFetcher{
		players:  []string{"alice", "bob"},
		profiles: map[string]normalize.Bundle{"bob": {}},
	}
	dataset, result, err := Title(context.Background(), fetcher, "IM", discard)
	if err != nil {
		t.Fatalf("Title error: %v", err)
	}
	if result.Recorded != 1 || result.Skipped != 1 {
		t.Errorf("result = %s, want recorded=1 skipped=1", result.Summary())
	}
	if dataset.Len() != 1 {
		t.Errorf("dataset rows = %d, want 1", dataset.Len())
	}
}

func TestTitle_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher := &fakeFetcher{players: []string{"alice"}}
	if _, _, err := Title(ctx, fetcher, "GM", discard); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDataset_OrderAndDedup(t *testing.T) {
	d := NewDataset()
	d.Put("Hikaru", normalize.Record{Country: "US"})
	d.Put("gothamchess", normalize.Record{Country: "US"})
	// Same key in a different case: replaces in place, keeps position.
	d.Put("HIKARU", normalize.Record{Country: "JP"})

	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}
	want := []string{"hikaru", "gothamchess"}
	got := d.Usernames()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Usernames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	rec, ok := d.Get("hikaru")
	if !ok || rec.Country != "JP" {
		t.Errorf("Get(hikaru) = %+v,%v, want updated record", rec, ok)
	}
}

func TestDataset_WriteCSV(t *testing.T) {
	d := NewDataset()
	rec, err := normalize.Build(
		normalize.Bundle{},
		normalize.Bundle{"country": "https://api.chess.com/pub/country/NO"},
	)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	d.Put("magnus", rec)

	var buf bytes.Buffer
	if err := d.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header + 1 row", len(lines))
	}
	wantHeader := "player_name," + strings.Join(normalize.Columns, ",")
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	wantRow := "magnus,0,0,0,0,0,0,0,0,0,0,0,0,0,0,NO,No Location Data Available,None"
	if lines[1] != wantRow {
		t.Errorf("row = %q, want %q", lines[1], wantRow)
	}
}

func TestDataset_AtMostNRows(t *testing.T) {
	d := NewDataset()
	for i := 0; i < 5; i++ {
		d.Put(fmt.Sprintf("player%d", i%3), normalize.Record{})
	}
	if d.Len() != 3 {
		t.Errorf("Len = %d, want 3", d.Len())
	}
}

func TestArtifactName(t *testing.T) {
	if got := ArtifactName("WGM"); got != "chess_data_WGM.csv" {
		t.Errorf("ArtifactName = %q, want chess_data_WGM.csv", got)
	}
}
