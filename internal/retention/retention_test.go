package retention

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/thinning/internal/snapshot"
)

func fromOrdinals(ords ...int) []snapshot.Snapshot {
	snaps := make([]snapshot.Snapshot, len(ords))
	for i, o := range ords {
		snaps[i] = snapshot.Snapshot{Ordinal: o}
	}
	return snaps
}

func reasons(snaps []snapshot.Snapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.Reason
	}
	return out
}

func keptOrdinals(snaps []snapshot.Snapshot) []int {
	var out []int
	for _, s := range snaps {
		if s.Keep {
			out = append(out, s.Ordinal)
		}
	}
	return out
}

func TestTag_MixedScenario(t *testing.T) {
	e := New(Policy{MonthlyGapDays: 28, WeeklyGapDays: 7, WeeklyWindowDays: 50, KeepLatest: 2})

	got := e.Tag(fromOrdinals(0, 10, 20, 35, 60, 90, 95, 100))

	assert.Equal(t, []int{0, 20, 35, 60, 90, 95, 100}, keptOrdinals(got))
	assert.Equal(t, []string{"o", "", "m", "m", "m", "m", "wd", "d"}, reasons(got))
}

func TestTag_SingleSnapshot(t *testing.T) {
	got := New(DefaultPolicy()).Tag(fromOrdinals(18262))

	require.Len(t, got, 1)
	assert.True(t, got[0].Keep)
	assert.Equal(t, "od", got[0].Reason)
}

func TestTag_Empty(t *testing.T) {
	assert.Nil(t, New(DefaultPolicy()).Tag(nil))
}

func TestTag_DailyHistoryDefaults(t *testing.T) {
	// one year of daily backups
	ords := make([]int, 365)
	for i := range ords {
		ords[i] = i
	}
	got := New(DefaultPolicy()).Tag(fromOrdinals(ords...))

	assert.Equal(t, "o", got[0].Reason)
	for i := 365 - 30; i < 365; i++ {
		assert.Contains(t, got[i].Reason, "d", "ordinal %d", i)
	}
	// monthly keeps fall exactly every 28 days
	for i := 28; i < 365; i += 28 {
		assert.Contains(t, got[i].Reason, "m", "ordinal %d", i)
	}
	// weekly keeps only inside the trailing 90 days
	for i, s := range got {
		if s.Ordinal < 364-90 {
			assert.NotContains(t, s.Reason, "w", "ordinal %d", i)
		}
	}
	kept := keptOrdinals(got)
	for i := 1; i < len(kept); i++ {
		if kept[i-1] >= 364-90 {
			assert.LessOrEqual(t, kept[i]-kept[i-1], 7, "gap before ordinal %d", kept[i])
		}
	}
}

func TestTag_FewerThanKeepLatest(t *testing.T) {
	got := New(Policy{MonthlyGapDays: 28, WeeklyGapDays: 7, WeeklyWindowDays: 90, KeepLatest: 30}).
		Tag(fromOrdinals(0, 100, 200))

	for _, s := range got {
		assert.True(t, s.Keep)
		assert.Contains(t, s.Reason, "d")
	}
}

func TestTag_KeepLatestZero(t *testing.T) {
	got := New(Policy{MonthlyGapDays: 28, WeeklyGapDays: 7, WeeklyWindowDays: 0, KeepLatest: 0}).
		Tag(fromOrdinals(0, 1, 2, 3))

	assert.Equal(t, []string{"o", "", "", ""}, reasons(got))
}

func TestTag_DoesNotMutateInput(t *testing.T) {
	in := fromOrdinals(0, 10, 20, 35, 60, 90, 95, 100)
	e := New(DefaultPolicy())

	first := e.Tag(in)
	second := e.Tag(in)

	assert.Equal(t, first, second)
	for _, s := range in {
		assert.False(t, s.Keep)
		assert.Empty(t, s.Reason)
	}
}

func TestTagEvery_AnchorAdvancesBelowHorizon(t *testing.T) {
	// 5 is below the horizon, untagged, yet becomes the anchor for 12
	snaps := fromOrdinals(0, 5, 9, 12)
	tagEvery(snaps, 7, 'w', 9)
	assert.Equal(t, []int{12}, keptOrdinals(snaps))

	// an exact gap below the horizon still moves the anchor
	snaps = fromOrdinals(0, 7, 14, 16)
	tagEvery(snaps, 7, 'w', 10)
	assert.Equal(t, []int{14}, keptOrdinals(snaps))
}

func TestTagEvery_LargeGapKeepsBothSides(t *testing.T) {
	snaps := fromOrdinals(0, 3, 40)
	snaps[0].MarkKeep('o')
	tagEvery(snaps, 28, 'm', 0)

	// 3 closes the gap, 40 is at least 28 after it
	assert.Equal(t, []string{"o", "m", "m"}, reasons(snaps))
}

func TestTagEvery_GapBound(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		ords := []int{0}
		for len(ords) < 200 {
			ords = append(ords, ords[len(ords)-1]+1+rng.Intn(12))
		}
		snaps := fromOrdinals(ords...)
		snaps[0].MarkKeep('o')
		tagEvery(snaps, 28, 'm', 0)

		prevIdx := 0
		for i := 1; i < len(snaps); i++ {
			if !snaps[i].Keep {
				continue
			}
			gap := snaps[i].Ordinal - snaps[prevIdx].Ordinal
			if i-prevIdx > 1 {
				assert.LessOrEqual(t, gap, 28, "round %d, ordinal %d", round, snaps[i].Ordinal)
			}
			prevIdx = i
		}
	}
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	bad := []Policy{
		{MonthlyGapDays: 0, WeeklyGapDays: 7, WeeklyWindowDays: 90, KeepLatest: 30},
		{MonthlyGapDays: 28, WeeklyGapDays: 0, WeeklyWindowDays: 90, KeepLatest: 30},
		{MonthlyGapDays: 28, WeeklyGapDays: 7, WeeklyWindowDays: -1, KeepLatest: 30},
		{MonthlyGapDays: 28, WeeklyGapDays: 7, WeeklyWindowDays: 90, KeepLatest: -1},
	}
	for _, p := range bad {
		assert.Error(t, p.Validate(), "%+v", p)
	}
}

func TestEngine_UpdateConfig(t *testing.T) {
	e := New(DefaultPolicy())
	e.UpdateConfig(Policy{MonthlyGapDays: 1, WeeklyGapDays: 1, WeeklyWindowDays: 0, KeepLatest: 0})

	got := e.Tag(fromOrdinals(0, 1, 2))
	assert.Equal(t, []int{0, 1, 2}, keptOrdinals(got))
}
