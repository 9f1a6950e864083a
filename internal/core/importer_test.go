package core

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importTime = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

func TestParseCSVHeaderAnyOrderAndCase(t *testing.T) {
	input := "Service,EXTRA,Password,UserName\n" +
		"github.com,x,X1,alice\n" +
		"example.org,y,Y2,\n"

	res, err := ParseCSV(strings.NewReader(input), importTime)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, 0, res.Skipped)

	assert.Equal(t, Record{Service: "github.com", Username: "alice", Password: "X1", UpdatedAt: importTime}, res.Candidates[0])
	assert.Equal(t, "", res.Candidates[1].Username)
}

func TestParseCSVMissingHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), importTime)
	assert.ErrorIs(t, err, ErrMissingHeader)

	_, err = ParseCSV(strings.NewReader("github.com,alice,X1\n"), importTime)
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestParseCSVMissingRequiredColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("username,service\nalice,github.com\n"), importTime)
	assert.ErrorIs(t, err, ErrMissingRequiredColumn)
	assert.Contains(t, err.Error(), "password")
}

func TestParseCSVSkipsBadRows(t *testing.T) {
	input := "username,password,service\n" +
		"alice,,github.com\n" + // no password
		"bob,pw,\n" + // no service
		"carol\n" + // short row
		"dave,\"broken,example.org\n"

	res, err := ParseCSV(strings.NewReader(input), importTime)
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, 4, res.Skipped)
}

func TestParseCSVBOMAndQuoting(t *testing.T) {
	input := "\ufeffusername,password,service\n" +
		"alice,\"p,a\"\"ss\",github.com\n"

	res, err := ParseCSV(strings.NewReader(input), importTime)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, `p,a"ss`, res.Candidates[0].Password)
}

func TestImportMissingPasswordScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	input := "username,password,service\nalice,,github.com\n"
	report, err := s.ImportCSV(ctx, testPassword, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, 1, report.Skipped)

	v, err := s.Open(testPassword)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Len())
}

func TestImportCountsAndLaterRowsWin(t *testing.T) {
	v := NewVault(fixedClock())
	_, err := v.Upsert(Record{Service: "github.com", Username: "alice", Password: "old"})
	require.NoError(t, err)
	_, err = v.Upsert(Record{Service: "same.com", Username: "u", Password: "same"})
	require.NoError(t, err)

	input := "username,password,service\n" +
		"alice,new,github.com\n" +
		"u,same,same.com\n" +
		"bob,b1,example.org\n" +
		"bob,b2,example.org\n" +
		",,\n"

	res, err := ParseCSV(strings.NewReader(input), importTime)
	require.NoError(t, err)
	report := Import(v, res)

	assert.Equal(t, ImportReport{Imported: 1, Updated: 2, Unchanged: 1, Skipped: 1}, report)

	records := v.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "new", records[0].Password)
	assert.Equal(t, "b2", records[2].Password)
}

func TestImportIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	input := "username,password,service\n" +
		"alice,X1,github.com\n" +
		"bob,Y2,example.org\n"

	first, err := s.ImportCSV(ctx, testPassword, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Imported)

	v1, err := s.Open(testPassword)
	require.NoError(t, err)
	once := v1.Records()
	fileOnce, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	second, err := s.ImportCSV(ctx, testPassword, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 2, second.Unchanged)

	v2, err := s.Open(testPassword)
	require.NoError(t, err)
	assert.Equal(t, once, v2.Records())

	fileTwice, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, fileOnce, fileTwice)
}

func TestImportHeaderFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.ImportCSV(ctx, testPassword, strings.NewReader("name,pass\nx,y\n"))
	assert.ErrorIs(t, err, ErrMissingHeader)

	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestParseCSVKeepsPasswordWhitespace(t *testing.T) {
	input := "username, password, service\n" +
		" alice,  secret ,  github.com\n"

	res, err := ParseCSV(strings.NewReader(input), importTime)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)

	c := res.Candidates[0]
	assert.Equal(t, "  secret ", c.Password)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, "github.com", c.Service)
}
