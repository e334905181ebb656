// Package guests reads guest lists for batch card rendering.
package guests

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Accepted header spellings, matched case-insensitively.
var columnAliases = map[string][]string{
	"name":      {"guest", "name", "guest_name"},
	"rsvp_link": {"rsvp_link", "rsvp", "link"},
	"note":      {"note", "notes"},
}

// LoadGuestList reads a CSV guest list from path. The header row must
// contain a guest (or name) column; rsvp_link and note columns are optional.
func LoadGuestList(path string) ([]Guest, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	gs, err := ReadGuestList(fp)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return gs, nil
}

// ReadGuestList parses a CSV guest list. Rows with an empty name are
// skipped, a cell like "Bob / Carol" yields one guest per name.
func ReadGuestList(r io.Reader) ([]Guest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("guest list has no header")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for key, aliases := range columnAliases {
			for _, a := range aliases {
				if _, seen := cols[key]; h == a && !seen {
					cols[key] = i
				}
			}
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("guest list has no guest column")
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []Guest{}
	for _, row := range rows[1:] {
		for _, name := range parseListCell(get(row, "name")) {
			out = append(out, Guest{
				Name:     name,
				RSVPLink: get(row, "rsvp_link"),
				Note:     get(row, "note"),
			})
		}
	}
	return out, nil
}

func parseListCell(s string) []string {
	s = strings.ReplaceAll(s, "／", "/")
	parts := strings.Split(s, "/")
	out := []string{}
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" && t != "-" {
			out = append(out, t)
		}
	}
	return out
}
