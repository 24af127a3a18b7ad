package tracking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekosolar/lead-pipeline/internal/domain"
)

// memEventRepo is an in-memory Repository for tests.
type memEventRepo struct {
	mu     sync.Mutex
	events []domain.TrackingEvent
	err    error
}

func (m *memEventRepo) Insert(_ context.Context, evt *domain.TrackingEvent) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *evt)
	return nil
}

func (m *memEventRepo) ListByLead(_ context.Context, leadID string) ([]domain.TrackingEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TrackingEvent
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].LeadID == leadID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMintAndParseRoundTrip(t *testing.T) {
	reg := NewRegistry(&memEventRepo{})
	minted := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	reg.SetClock(fixedClock(minted))

	leadID := "a3c9e1d2-0b4f-4f6e-9d21-8c7b5a4e3f10"
	id := reg.MintID(leadID, domain.EventOpen)

	parsed, err := ParseID(id)
	require.NoError(t, err)
	assert.Equal(t, domain.EventOpen, parsed.Kind)
	assert.Equal(t, leadID, parsed.LeadID)
	assert.Equal(t, minted, parsed.MintedAt)
	assert.Len(t, parsed.Suffix, 6)
}

func TestMintIDsAreDistinct(t *testing.T) {
	reg := NewRegistry(&memEventRepo{})
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := reg.MintID("lead-1", domain.EventClick)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestMintIDConcurrent(t *testing.T) {
	// One registry is shared by every in-flight dispatch, so minting
	// from many goroutines at once must stay well-formed under -race.
	reg := NewRegistry(&memEventRepo{})

	const workers, perWorker = 8, 250
	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- reg.MintID("lead-1", domain.EventOpen)
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		parsed, err := ParseID(id)
		require.NoError(t, err)
		assert.Len(t, parsed.Suffix, 6)
		seen[id] = true
	}
	assert.Greater(t, len(seen), workers*perWorker/2, "suffixes vary across mints")
}

func TestParseIDRejectsGarbage(t *testing.T) {
	_, err := ParseID("not-a-tracking-id")
	assert.ErrorIs(t, err, ErrMalformedID)

	_, err = ParseID("bounce_lead-1_1700000000000_abc123")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = ParseID("open_lead-1_notmillis_abc123")
	assert.ErrorIs(t, err, ErrMalformedID)

	_, err = ParseID("")
	assert.Error(t, err)
}

func TestRecordOpenPersistsEvent(t *testing.T) {
	repo := &memEventRepo{}
	reg := NewRegistry(repo)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	reg.SetClock(fixedClock(now))

	id := reg.MintID("lead-42", domain.EventOpen)
	evt, err := reg.RecordOpen(context.Background(), id, "Mozilla/5.0", "10.0.0.7")
	require.NoError(t, err)

	assert.Equal(t, "lead-42", evt.LeadID)
	assert.Equal(t, domain.EventOpen, evt.Kind)
	assert.Equal(t, now, evt.OccurredAt)
	require.Len(t, repo.events, 1)
	assert.Equal(t, "10.0.0.7", repo.events[0].IPAddress)
}

func TestRecordClickKeepsLinkName(t *testing.T) {
	repo := &memEventRepo{}
	reg := NewRegistry(repo)

	id := reg.MintID("lead-42", domain.EventClick)
	evt, err := reg.RecordClick(context.Background(), id, "call-phone", "curl/8.0", "10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, "call-phone", evt.LinkName)
}

func TestRecordOpenRejectsMalformedID(t *testing.T) {
	repo := &memEventRepo{}
	reg := NewRegistry(repo)

	_, err := reg.RecordOpen(context.Background(), "???", "", "")
	assert.ErrorIs(t, err, ErrMalformedID)
	assert.Empty(t, repo.events, "nothing is persisted for bad IDs")
}

func TestRecordOpenSurfacesRepoError(t *testing.T) {
	repo := &memEventRepo{err: errors.New("db down")}
	reg := NewRegistry(repo)

	id := reg.MintID("lead-1", domain.EventOpen)
	_, err := reg.RecordOpen(context.Background(), id, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestSummarizeScoresOpensAndClicks(t *testing.T) {
	repo := &memEventRepo{}
	reg := NewRegistry(repo)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	reg.SetClock(fixedClock(now))

	old := now.Add(-48 * time.Hour)
	repo.events = []domain.TrackingEvent{
		{LeadID: "lead-1", Kind: domain.EventOpen, OccurredAt: old},
		{LeadID: "lead-1", Kind: domain.EventOpen, OccurredAt: old},
		{LeadID: "lead-1", Kind: domain.EventClick, OccurredAt: old},
		{LeadID: "other", Kind: domain.EventClick, OccurredAt: old},
	}

	sum, err := reg.Summarize(context.Background(), "lead-1")
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Opens)
	assert.Equal(t, 1, sum.Clicks)
	// 2 opens * 10 + 1 click * 25, no recency bonus after two days.
	assert.Equal(t, 45, sum.Score)
	assert.False(t, sum.IsHotLead)
	assert.Equal(t, "Interested - Some Engagement", sum.Summary)
	require.NotNil(t, sum.LastActivity)
	assert.Equal(t, old, *sum.LastActivity)
}

func TestSummarizeRecencyBonuses(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		last      time.Time
		wantScore int
		wantHot   bool
	}{
		{"under an hour", now.Add(-30 * time.Minute), 10 + 50, true},
		{"under a day", now.Add(-5 * time.Hour), 10 + 25, false},
		{"older", now.Add(-30 * 24 * time.Hour), 10, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &memEventRepo{events: []domain.TrackingEvent{
				{LeadID: "lead-1", Kind: domain.EventOpen, OccurredAt: tc.last},
			}}
			reg := NewRegistry(repo)
			reg.SetClock(fixedClock(now))

			sum, err := reg.Summarize(context.Background(), "lead-1")
			require.NoError(t, err)
			assert.Equal(t, tc.wantScore, sum.Score)
			assert.Equal(t, tc.wantHot, sum.IsHotLead)
		})
	}
}

func TestSummarizeNoEvents(t *testing.T) {
	reg := NewRegistry(&memEventRepo{})

	sum, err := reg.Summarize(context.Background(), "lead-quiet")
	require.NoError(t, err)
	assert.Zero(t, sum.Score)
	assert.Nil(t, sum.LastActivity)
	assert.False(t, sum.IsHotLead)
	assert.Equal(t, "Cold - No Engagement", sum.Summary)
}

func TestSummaryLabelBands(t *testing.T) {
	assert.Equal(t, "Hot Lead - High Engagement", summaryLabel(76))
	assert.Equal(t, "Warm Lead - Moderate Engagement", summaryLabel(75))
	assert.Equal(t, "Warm Lead - Moderate Engagement", summaryLabel(51))
	assert.Equal(t, "Interested - Some Engagement", summaryLabel(50))
	assert.Equal(t, "Aware - Basic Engagement", summaryLabel(10))
	assert.Equal(t, "Cold - No Engagement", summaryLabel(0))
}

func TestTrackingIDHasNoSpaces(t *testing.T) {
	reg := NewRegistry(&memEventRepo{})
	id := reg.MintID("lead-1", domain.EventOpen)
	assert.False(t, strings.ContainsAny(id, " \t\n"))
	assert.True(t, strings.HasPrefix(id, "open_"))
}
