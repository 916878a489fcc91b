package scheduler

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"shotframe/model"
)

// Runner captures and stores one screenshot for a schedule.
type Runner func(ctx context.Context, sc model.Schedule) (*model.CaptureRecord, error)

type Scheduler struct {
	mu         sync.Mutex
	schedules  []model.Schedule
	lastRun    map[string]time.Time
	running    map[string]bool
	runner     Runner
	onUpdate   func()
	notifyMu   sync.Mutex // serializes onUpdate calls
	onComplete func(*model.CaptureRecord)
}

func New(runner Runner, initial []model.Schedule, lastRun map[string]time.Time) *Scheduler {
	s := &Scheduler{
		schedules: append([]model.Schedule(nil), initial...),
		lastRun:   make(map[string]time.Time, len(lastRun)),
		running:   make(map[string]bool),
		runner:    runner,
	}
	for k, v := range lastRun {
		s.lastRun[k] = v
	}
	return s
}

// SetOnUpdate registers a callback fired after the schedules or last-run times change.
func (s *Scheduler) SetOnUpdate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// SetOnComplete registers a callback fired after each successful scheduled capture.
func (s *Scheduler) SetOnComplete(fn func(*model.CaptureRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = fn
}

func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		log.Println("[scheduler] started")
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[scheduler] stopped")
				return
			case now := <-ticker.C:
				s.check(ctx, now)
			}
		}
	}()
}

func (s *Scheduler) check(ctx context.Context, now time.Time) {
	for _, sc := range s.due(now) {
		go s.runOnce(ctx, sc, now)
	}
}

// due returns the schedules to start at now and marks them running.
func (s *Scheduler) due(now time.Time) []model.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Schedule
	for _, sc := range s.schedules {
		if !sc.Enabled || sc.ID == "" || s.running[sc.ID] {
			continue
		}
		if !shouldRun(sc, s.lastRun[sc.ID], now) {
			continue
		}
		s.running[sc.ID] = true
		out = append(out, sc)
	}
	return out
}

func (s *Scheduler) runOnce(ctx context.Context, sc model.Schedule, now time.Time) {
	defer func() {
		s.mu.Lock()
		delete(s.running, sc.ID)
		s.mu.Unlock()
	}()

	rec, err := s.runner(ctx, sc)
	if err != nil {
		log.Printf("[scheduler] run %s failed: %v", sc.ID, err)
		return
	}

	s.mu.Lock()
	s.lastRun[sc.ID] = now
	onComplete := s.onComplete
	s.mu.Unlock()

	log.Printf("[scheduler] run %s saved %s", sc.ID, rec.Filename)
	s.notifyUpdate()
	if onComplete != nil {
		onComplete(rec)
	}
}

func shouldRun(sc model.Schedule, lastRun time.Time, now time.Time) bool {
	switch sc.Type {
	case model.ScheduleInterval:
		if sc.Every == "" {
			return false
		}
		dur, err := time.ParseDuration(sc.Every)
		if err != nil || dur <= 0 {
			return false
		}
		if lastRun.IsZero() {
			return true
		}
		return now.Sub(lastRun) >= dur

	case model.ScheduleDaily:
		hour, min, ok := parseTimeOfDay(sc.TimeOfDay)
		if !ok {
			return false
		}

		loc := now.Location()
		target := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, loc)

		if now.Before(target) {
			return false
		}
		if !lastRun.IsZero() && sameDay(lastRun.In(loc), now) {
			return false
		}
		return true

	default:
		return false
	}
}

func parseTimeOfDay(s string) (hour, min int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	hour, err1 := strconv.Atoi(parts[0])
	min, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, false
	}
	return hour, min, true
}

// Validate reports whether sc describes a runnable schedule.
func Validate(sc model.Schedule) bool {
	switch sc.Type {
	case model.ScheduleInterval:
		dur, err := time.ParseDuration(sc.Every)
		return err == nil && dur > 0
	case model.ScheduleDaily:
		_, _, ok := parseTimeOfDay(sc.TimeOfDay)
		return ok
	}
	return false
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (s *Scheduler) Schedules() []model.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Schedule, len(s.schedules))
	copy(out, s.schedules)
	return out
}

func (s *Scheduler) SetSchedules(scheds []model.Schedule) {
	s.mu.Lock()
	s.schedules = make([]model.Schedule, len(scheds))
	copy(s.schedules, scheds)

	// Keep last-run times only for schedules that still exist.
	keep := make(map[string]time.Time, len(s.lastRun))
	for _, sc := range s.schedules {
		if t, ok := s.lastRun[sc.ID]; ok {
			keep[sc.ID] = t
		}
	}
	s.lastRun = keep
	s.mu.Unlock()

	s.notifyUpdate()
}

// notifyUpdate calls onUpdate, one call at a time.
func (s *Scheduler) notifyUpdate() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate()
	}
}

func (s *Scheduler) LastRun() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Time, len(s.lastRun))
	for k, v := range s.lastRun {
		out[k] = v
	}
	return out
}
