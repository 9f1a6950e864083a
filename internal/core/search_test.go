package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchVault(t *testing.T, records ...Record) *Vault {
	t.Helper()
	v := NewVault(fixedClock())
	for _, r := range records {
		_, err := v.Upsert(r)
		require.NoError(t, err)
	}
	return v
}

func TestSearchNoMatch(t *testing.T) {
	v := searchVault(t, Record{Service: "github.com", Password: "x"})

	m := v.Search("gitlab", false)
	assert.IsType(t, NoMatch{}, m)
	assert.Equal(t, 0, m.Len())
}

func TestSearchSingleMatchRevealsPassword(t *testing.T) {
	v := searchVault(t,
		Record{Service: "github.com", Username: "alice", Password: "X1"},
		Record{Service: "example.org", Username: "bob", Password: "Y2"},
	)

	m := v.Search("GITHUB", false)
	single, ok := m.(SingleMatch)
	require.True(t, ok, "expected SingleMatch, got %T", m)
	assert.Equal(t, "X1", single.Record.Password)
	assert.Equal(t, "alice", single.Record.Username)
}

func TestSearchRanksMostRecentFirst(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	v := searchVault(t,
		Record{Service: "foo.com", Username: "a", Password: "old", UpdatedAt: t1},
		Record{Service: "foo-bar.com", Username: "b", Password: "new", UpdatedAt: t2},
	)

	m, ok := v.Search("foo", false).(*MultiMatch)
	require.True(t, ok)
	views := m.Views()
	require.Len(t, views, 2)
	assert.Equal(t, "foo-bar.com", views[0].Service)
	assert.Equal(t, "foo.com", views[1].Service)
}

func TestSearchTieKeepsInsertionOrder(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v := searchVault(t,
		Record{Service: "mail.one", Password: "1", UpdatedAt: ts},
		Record{Service: "mail.two", Password: "2", UpdatedAt: ts},
		Record{Service: "mail.three", Password: "3", UpdatedAt: ts},
	)

	m, ok := v.Search("mail", true).(*MultiMatch)
	require.True(t, ok)
	views := m.Views()
	require.Len(t, views, 3)
	assert.Equal(t, []string{"mail.one", "mail.two", "mail.three"},
		[]string{views[0].Service, views[1].Service, views[2].Service})
}

func TestMultiMatchMasksUnlessVerbose(t *testing.T) {
	v := searchVault(t,
		Record{Service: "shop.example", Password: "s1"},
		Record{Service: "shop.other", Password: "s2"},
	)

	masked := v.Search("shop", false).(*MultiMatch)
	for _, view := range masked.Views() {
		assert.Equal(t, MaskedPassword, view.Password)
		assert.True(t, view.Masked)
	}

	verbose := v.Search("shop", true).(*MultiMatch)
	for _, view := range verbose.Views() {
		assert.NotEqual(t, MaskedPassword, view.Password)
		assert.False(t, view.Masked)
	}
}

func TestMultiMatchSelect(t *testing.T) {
	v := searchVault(t,
		Record{Service: "shop.example", Password: "s1"},
		Record{Service: "shop.other", Password: "s2"},
	)
	m := v.Search("shop", false).(*MultiMatch)

	views := m.Views()
	r, err := m.Select(1)
	require.NoError(t, err)
	assert.Equal(t, views[1].Service, r.Service)
	assert.NotEqual(t, MaskedPassword, r.Password)

	_, err = m.Select(2)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	_, err = m.Select(-1)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestSearchEmptyQueryMatchesAll(t *testing.T) {
	v := searchVault(t,
		Record{Service: "a", Password: "1"},
		Record{Service: "b", Password: "2"},
	)
	assert.Equal(t, 2, v.Search("", false).Len())
}

func TestSuggest(t *testing.T) {
	v := searchVault(t,
		Record{Service: "github.com", Username: "alice", Password: "1"},
		Record{Service: "github.com", Username: "bob", Password: "2"},
		Record{Service: "gitlab.com", Password: "3"},
		Record{Service: "example.org", Password: "4"},
	)

	suggestions := v.Suggest("githib", 5)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "github.com", suggestions[0])
	assert.NotContains(t, suggestions, "example.org")
	seen := make(map[string]bool)
	for _, s := range suggestions {
		assert.False(t, seen[s], "duplicate suggestion %s", s)
		seen[s] = true
	}

	assert.Empty(t, v.Suggest("zzzzzz", 5))
	assert.Empty(t, v.Suggest("", 5))
	assert.Len(t, v.Suggest("gitlub", 1), 1)
}
