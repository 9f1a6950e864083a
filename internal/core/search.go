package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// MaskedPassword replaces passwords in multi-match views
const MaskedPassword = "********"

// Match is the result of a vault search: NoMatch, SingleMatch or *MultiMatch
type Match interface {
	Len() int
	isMatch()
}

// NoMatch means no service contains the query
type NoMatch struct{}

func (NoMatch) Len() int { return 0 }
func (NoMatch) isMatch() {}

// SingleMatch is an unambiguous result. It carries the real password.
type SingleMatch struct {
	Record Record
}

func (SingleMatch) Len() int { return 1 }
func (SingleMatch) isMatch() {}

// RecordView is a record as shown to the user when several records match
type RecordView struct {
	Service   string
	Username  string
	Password  string
	Masked    bool
	UpdatedAt time.Time
}

// MultiMatch is an ambiguous result. Views are redacted unless the search was
// verbose; the real password is only available through Select.
type MultiMatch struct {
	records []Record
	verbose bool
}

func (m *MultiMatch) Len() int { return len(m.records) }
func (*MultiMatch) isMatch()   {}

// Views returns the matches in rank order
func (m *MultiMatch) Views() []RecordView {
	views := make([]RecordView, len(m.records))
	for i, r := range m.records {
		views[i] = RecordView{
			Service:   r.Service,
			Username:  r.Username,
			Password:  r.Password,
			UpdatedAt: r.UpdatedAt,
		}
		if !m.verbose {
			views[i].Password = MaskedPassword
			views[i].Masked = true
		}
	}
	return views
}

// Select disambiguates the match by its position in Views
func (m *MultiMatch) Select(i int) (Record, error) {
	if i < 0 || i >= len(m.records) {
		return Record{}, fmt.Errorf("%w: %d", ErrInvalidSelection, i)
	}
	return m.records[i], nil
}

// Search finds records whose service contains query, case-insensitively.
// Matches are ranked most recently updated first; ties keep insertion order.
func (v *Vault) Search(query string, verbose bool) Match {
	q := foldKey(query)

	var found []Record
	for _, r := range v.payload.Records {
		if strings.Contains(foldKey(r.Service), q) {
			found = append(found, r)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].UpdatedAt.After(found[j].UpdatedAt)
	})

	switch len(found) {
	case 0:
		return NoMatch{}
	case 1:
		return SingleMatch{Record: found[0]}
	default:
		return &MultiMatch{records: found, verbose: verbose}
	}
}

// Suggest returns up to n distinct services that are close to query by edit
// distance, closest first. It is meant for searches that found nothing.
func (v *Vault) Suggest(query string, n int) []string {
	q := foldKey(query)
	if q == "" || n <= 0 {
		return nil
	}

	type candidate struct {
		service  string
		distance int
	}

	dmp := diffmatchpatch.New()
	maxDistance := len([]rune(q))/3 + 1
	seen := make(map[string]bool)
	var candidates []candidate

	for _, r := range v.payload.Records {
		key := foldKey(r.Service)
		if seen[key] {
			continue
		}
		seen[key] = true

		// Compare against the full name and its first label so that
		// "githib" is close to "github.com"
		best := levenshtein(dmp, q, key)
		if label, _, ok := strings.Cut(key, "."); ok {
			if d := levenshtein(dmp, q, label); d < best {
				best = d
			}
		}
		if best <= maxDistance {
			candidates = append(candidates, candidate{service: r.Service, distance: best})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.service
	}
	return out
}

func levenshtein(dmp *diffmatchpatch.DiffMatchPatch, a, b string) int {
	return dmp.DiffLevenshtein(dmp.DiffMain(a, b, false))
}
