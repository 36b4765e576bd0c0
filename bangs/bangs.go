// Package bangs resolves shortcut triggers to external redirect URLs.
//
// A bang table maps a trigger word ("w", "gh") to a URL template with a
// {{{s}}} placeholder. When a query carries a bang whose trigger is in the
// table, the remaining terms are substituted into the template and the whole
// search short-circuits into a redirect. Tables are reloaded atomically, so a
// query resolves against exactly one table version.
package bangs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"

	"github.com/TheIronBorn/stract/blobstore"
	"github.com/TheIronBorn/stract/query"
)

// placeholder is replaced by the url-escaped residual query.
const placeholder = "{{{s}}}"

// Bang is one shortcut definition. The compact JSON keys match the
// DuckDuckGo bang export format the tables are distributed in.
type Bang struct {
	Trigger     string `json:"t"`
	Name        string `json:"s,omitempty"`
	Domain      string `json:"d,omitempty"`
	URLTemplate string `json:"u"`
}

// Redirect is a resolved bang: where to send the user and which definition
// produced the target.
type Redirect struct {
	URL  string
	Bang Bang
}

// Table holds the active bang set. Lookups read an atomically published map,
// so Resolve never observes a half-reloaded table.
type Table struct {
	store blobstore.Store
	blob  string

	bangs atomic.Pointer[map[string]Bang]
}

// NewTable creates a table backed by the given blob. The table starts empty;
// call Reload to populate it.
func NewTable(store blobstore.Store, blob string) *Table {
	t := &Table{store: store, blob: blob}
	empty := map[string]Bang{}
	t.bangs.Store(&empty)
	return t
}

// NewStaticTable creates a table from an in-memory bang list, mainly for
// tests and embedded deployments.
func NewStaticTable(defs []Bang) *Table {
	t := &Table{}
	t.bangs.Store(buildMap(defs))
	return t
}

// Len returns the number of loaded triggers.
func (t *Table) Len() int {
	return len(*t.bangs.Load())
}

// Reload fetches the blob, parses it and atomically swaps the active table.
// On any error the previous table keeps serving.
func (t *Table) Reload(ctx context.Context) error {
	if t.store == nil {
		return fmt.Errorf("bangs: table has no backing store")
	}
	raw, err := t.store.Get(ctx, t.blob)
	if err != nil {
		return fmt.Errorf("bangs: fetch %s: %w", t.blob, err)
	}
	if strings.HasSuffix(t.blob, ".zst") {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return err
		}
		defer dec.Close()
		if raw, err = dec.DecodeAll(raw, nil); err != nil {
			return fmt.Errorf("bangs: decompress %s: %w", t.blob, err)
		}
	}

	var defs []Bang
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&defs); err != nil {
		return fmt.Errorf("bangs: parse %s: %w", t.blob, err)
	}

	t.bangs.Store(buildMap(defs))
	return nil
}

// Resolve returns the redirect for the query's bang, if the query carries one
// and its trigger is known. A query whose bang misses the table resolves to
// nothing; the caller degrades it to a plain term.
func (t *Table) Resolve(q *query.Query) (*Redirect, bool) {
	trigger, ok := q.Bang()
	if !ok {
		return nil, false
	}
	b, ok := (*t.bangs.Load())[strings.ToLower(trigger)]
	if !ok {
		return nil, false
	}

	rest := url.QueryEscape(q.WithoutBangs())
	return &Redirect{
		URL:  strings.ReplaceAll(b.URLTemplate, placeholder, rest),
		Bang: b,
	}, true
}

func buildMap(defs []Bang) *map[string]Bang {
	m := make(map[string]Bang, len(defs))
	for _, b := range defs {
		if b.Trigger == "" || b.URLTemplate == "" {
			continue
		}
		// First definition of a trigger wins, matching resolution order.
		key := strings.ToLower(b.Trigger)
		if _, ok := m[key]; ok {
			continue
		}
		m[key] = b
	}
	return &m
}
