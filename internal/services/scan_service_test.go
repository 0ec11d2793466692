package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScanFixture(t *testing.T) (*engineFixture, *ScanService) {
	t.Helper()
	f := newEngineFixture(t)
	scanner := NewScanService(f.engine.DB, f.rules, f.engine, f.platform, 24*time.Hour)
	scanner.now = func() time.Time { return f.now }
	return f, scanner
}

func TestScanOpensCasesForNonCompliantPosts(t *testing.T) {
	f, scanner := newScanFixture(t)
	_, err := f.rules.PutRuleSet("gaming", []string{"[News]"}, gamingSteps())
	require.NoError(t, err)

	f.platform.posts["gaming"] = []PostRef{
		{ID: 1, Title: "Big update", Published: f.now},
		{ID: 2, Title: "Patch notes [News]", Published: f.now},
	}
	f.platform.titles[1] = "Big update"
	f.platform.titles[2] = "Patch notes [News]"

	require.NoError(t, scanner.ScanCommunities())

	cases := f.openCases(t)
	require.Len(t, cases, 1)
	assert.Equal(t, int64(1), cases[0].PostID)
	assert.Equal(t, "gaming", cases[0].Community)
}

func TestScanInspectsEachPostOnce(t *testing.T) {
	f, scanner := newScanFixture(t)
	_, err := f.rules.PutRuleSet("gaming", []string{"[News]"}, gamingSteps())
	require.NoError(t, err)

	f.platform.posts["gaming"] = []PostRef{{ID: 1, Title: "Big update", Published: f.now}}
	f.platform.titles[1] = "Big update"

	require.NoError(t, scanner.ScanCommunities())
	require.Len(t, f.openCases(t), 1)

	// Closing the case and rescanning must not re-open it: the post was
	// already judged once.
	require.NoError(t, f.engine.DB.Exec("DELETE FROM enforcement_cases").Error)
	require.NoError(t, scanner.ScanCommunities())
	assert.Empty(t, f.openCases(t))
}

func TestScanSkipsCommunitiesWithoutTags(t *testing.T) {
	f, scanner := newScanFixture(t)

	f.platform.posts["gaming"] = []PostRef{{ID: 1, Title: "Big update", Published: f.now}}

	require.NoError(t, scanner.ScanCommunities())
	assert.Empty(t, f.openCases(t))
}
