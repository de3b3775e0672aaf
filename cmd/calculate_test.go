package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrant(t *testing.T) {
	grant, err := parseGrant("4:2016-01-04:2016-01-10:500.00")
	require.NoError(t, err)
	assert.Equal(t, 4, grant.UserID)
	assert.Equal(t, "2016-01-04", grant.PeriodStart.Format("2006-01-02"))
	assert.Equal(t, "2016-01-10", grant.PeriodEnd.Format("2006-01-02"))
	assert.Equal(t, int64(50000), grant.Amount)

	for _, bad := range []string{
		"4:2016-01-04:2016-01-10",
		"x:2016-01-04:2016-01-10:500.00",
		"4:04.01.2016:2016-01-10:500.00",
		"4:2016-01-04:never:500.00",
		"4:2016-01-04:2016-01-10:-5",
	} {
		_, err := parseGrant(bad)
		assert.Error(t, err, bad)
	}
}

func TestCalculateCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(input, []byte(`2014-12-31,4,natural,cash_out,1200.00,EUR
2015-01-01,4,natural,cash_out,1000.00,EUR
2016-01-05,1,natural,cash_in,200.00,EUR
2016-01-06,2,legal,cash_out,300.00,EUR
2016-01-06,1,natural,cash_out,30000,JPY
`), 0o600))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{
		"calculate", input,
		"--env-file", filepath.Join(dir, ".env"),
		"--grant", "1:2016-01-04:2016-01-10:100.00",
		"--journal",
	})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	require.NoError(t, rootCmd.Execute())

	// User 1 gets 100.00 EUR instead of the weekly 1000.00; 30000 JPY
	// is 231.61 EUR so 131.61 EUR is charged.
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	assert.Equal(t, []string{"0.60", "3.00", "0.06", "50.00", "51"}, lines)

	journal := stderr.String()
	assert.Contains(t, journal, "AllowanceGranted")
	assert.Contains(t, journal, "requested=23161 covered=10000 uncovered=13161 remaining=0")
	assert.Contains(t, journal, "remaining after replay: 0 of 10000")
}
