package collect

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/olareaux/chessdata/internal/normalize"
)

// Dataset accumulates one title's rows keyed by username. Usernames are
// case-insensitive upstream, so keys are lowercased; insertion order is
// preserved and a repeated username updates its row in place.
type Dataset struct {
	order []string
	rows  map[string]normalize.Record
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{rows: make(map[string]normalize.Record)}
}

// Put inserts or replaces the record for a username.
func (d *Dataset) Put(username string, rec normalize.Record) {
	key := strings.ToLower(username)
	if _, exists := d.rows[key]; !exists {
		d.order = append(d.order, key)
	}
	d.rows[key] = rec
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.order)
}

// Usernames returns the row keys in insertion order.
func (d *Dataset) Usernames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Get returns the record for a username.
func (d *Dataset) Get(username string) (normalize.Record, bool) {
	rec, ok := d.rows[strings.ToLower(username)]
	return rec, ok
}

// WriteCSV emits the dataset: a header row of player_name plus the
// schema columns, then one row per player in insertion order.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{"player_name"}, normalize.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, key := range d.order {
		if err := cw.Write(append([]string{key}, d.rows[key].Row()...)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
