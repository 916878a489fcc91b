package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotframe/model"
)

func TestShouldRunInterval(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sc := model.Schedule{ID: "s", Enabled: true, Type: model.ScheduleInterval, Every: "1h"}

	assert.True(t, shouldRun(sc, time.Time{}, now))
	assert.False(t, shouldRun(sc, now.Add(-30*time.Minute), now))
	assert.True(t, shouldRun(sc, now.Add(-time.Hour), now))

	sc.Every = "soon"
	assert.False(t, shouldRun(sc, time.Time{}, now))
}

func TestShouldRunDaily(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	sc := model.Schedule{ID: "s", Enabled: true, Type: model.ScheduleDaily, TimeOfDay: "09:00"}

	assert.True(t, shouldRun(sc, time.Time{}, now))
	assert.False(t, shouldRun(sc, now.Add(-10*time.Minute), now))
	assert.True(t, shouldRun(sc, now.AddDate(0, 0, -1), now))

	sc.TimeOfDay = "10:00"
	assert.False(t, shouldRun(sc, time.Time{}, now))

	sc.TimeOfDay = "25:00"
	assert.False(t, shouldRun(sc, time.Time{}, now))
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate(model.Schedule{Type: model.ScheduleInterval, Every: "15m"}))
	assert.False(t, Validate(model.Schedule{Type: model.ScheduleInterval, Every: "0s"}))
	assert.True(t, Validate(model.Schedule{Type: model.ScheduleDaily, TimeOfDay: "23:59"}))
	assert.False(t, Validate(model.Schedule{Type: model.ScheduleDaily, TimeOfDay: "noon"}))
	assert.False(t, Validate(model.Schedule{Type: "weekly"}))
}

func TestRunOnceRecordsLastRunAndNotifies(t *testing.T) {
	sc := model.Schedule{ID: "s1", Enabled: true, Type: model.ScheduleInterval, Every: "1h"}
	runner := func(_ context.Context, got model.Schedule) (*model.CaptureRecord, error) {
		return &model.CaptureRecord{ID: "rec-" + got.ID, Filename: "x.png"}, nil
	}
	s := New(runner, []model.Schedule{sc}, nil)

	var (
		mu        sync.Mutex
		updates   int
		completed []string
	)
	s.SetOnUpdate(func() {
		mu.Lock()
		updates++
		mu.Unlock()
	})
	s.SetOnComplete(func(rec *model.CaptureRecord) {
		mu.Lock()
		completed = append(completed, rec.ID)
		mu.Unlock()
	})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	due := s.due(now)
	require.Len(t, due, 1)
	assert.Empty(t, s.due(now), "a running schedule is not started twice")

	s.runOnce(context.Background(), due[0], now)

	assert.Equal(t, now, s.LastRun()["s1"])
	assert.Equal(t, 1, updates)
	assert.Equal(t, []string{"rec-s1"}, completed)
	assert.Empty(t, s.due(now.Add(time.Minute)))
}

func TestRunOnceFailureKeepsLastRun(t *testing.T) {
	sc := model.Schedule{ID: "s1", Enabled: true, Type: model.ScheduleInterval, Every: "1h"}
	s := New(func(context.Context, model.Schedule) (*model.CaptureRecord, error) {
		return nil, errors.New("no display")
	}, []model.Schedule{sc}, nil)

	now := time.Now()
	s.runOnce(context.Background(), sc, now)

	assert.Empty(t, s.LastRun())
	assert.Len(t, s.due(now), 1)
}

func TestSetSchedulesPrunesLastRun(t *testing.T) {
	last := map[string]time.Time{"keep": time.Now(), "drop": time.Now()}
	s := New(nil, []model.Schedule{{ID: "keep"}, {ID: "drop"}}, last)

	updated := false
	s.SetOnUpdate(func() { updated = true })
	s.SetSchedules([]model.Schedule{{ID: "keep"}})

	assert.True(t, updated)
	assert.Len(t, s.Schedules(), 1)
	_, ok := s.LastRun()["drop"]
	assert.False(t, ok)
	_, ok = s.LastRun()["keep"]
	assert.True(t, ok)
}

func TestDisabledSchedulesAreSkipped(t *testing.T) {
	s := New(nil, []model.Schedule{{ID: "off", Enabled: false, Type: model.ScheduleInterval, Every: "1m"}}, nil)
	assert.Empty(t, s.due(time.Now()))
}

func TestOnUpdateCallsDoNotOverlap(t *testing.T) {
	scheds := []model.Schedule{
		{ID: "a", Enabled: true, Type: model.ScheduleInterval, Every: "1m"},
		{ID: "b", Enabled: true, Type: model.ScheduleInterval, Every: "1m"},
	}
	s := New(func(_ context.Context, sc model.Schedule) (*model.CaptureRecord, error) {
		return &model.CaptureRecord{ID: sc.ID, Filename: sc.ID + ".png"}, nil
	}, scheds, nil)

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		calls   int
		saved   map[string]time.Time
	)
	s.SetOnUpdate(func() {
		mu.Lock()
		inside++
		if inside > maxSeen {
			maxSeen = inside
		}
		mu.Unlock()

		// Shared state written the way the config save does it.
		saved = s.LastRun()
		time.Sleep(50 * time.Millisecond)

		mu.Lock()
		inside--
		calls++
		mu.Unlock()
	})

	s.check(context.Background(), time.Now())
	go s.SetSchedules(s.Schedules())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 3
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxSeen)
	assert.NotNil(t, saved)
}
