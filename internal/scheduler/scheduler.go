package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is invoked when a job is due. now is the time the check ran.
type JobFunc func(ctx context.Context, now time.Time)

type job struct {
	name     string
	schedule cron.Schedule
	fn       JobFunc
	next     time.Time
	seq      int // registration order, breaks ties between equal due times
	index    int
}

// jobQueue is a min-heap of jobs ordered by due time then registration order.
type jobQueue []*job

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	if q[i].next.Equal(q[j].next) {
		return q[i].seq < q[j].seq
	}
	return q[i].next.Before(q[j].next)
}

func (q jobQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *jobQueue) Push(x any) {
	j := x.(*job)
	j.index = len(*q)
	*q = append(*q, j)
}

func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	j := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return j
}

// Scheduler runs registered jobs from a single loop. Jobs never overlap: due
// jobs are executed one after another in due-time order.
type Scheduler struct {
	queue jobQueue
	seq   int
	now   func() time.Time
	loc   *time.Location
}

// New creates a scheduler evaluating cron expressions in loc (UTC when nil).
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		now: time.Now,
		loc: loc,
	}
}

// Every registers fn to run every interval, first at start+interval.
func (s *Scheduler) Every(name string, interval time.Duration, fn JobFunc) error {
	if interval < time.Second {
		return fmt.Errorf("scheduler: interval for %s must be at least one second", name)
	}
	s.add(name, cron.Every(interval), fn)
	return nil
}

// Cron registers fn on a standard five-field cron expression, e.g. "59 23 * * *".
func (s *Scheduler) Cron(name, spec string, fn JobFunc) error {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("scheduler: invalid cron spec %q for %s: %w", spec, name, err)
	}
	s.add(name, sched, fn)
	return nil
}

func (s *Scheduler) add(name string, sched cron.Schedule, fn JobFunc) {
	j := &job{
		name:     name,
		schedule: sched,
		fn:       fn,
		seq:      s.seq,
	}
	s.seq++
	j.next = sched.Next(s.now().In(s.loc))
	heap.Push(&s.queue, j)
}

// NextRun returns the earliest due time, or false when nothing is scheduled.
func (s *Scheduler) NextRun() (time.Time, bool) {
	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].next, true
}

// RunPending executes every job due at or before now and returns how many ran.
// A job that fell behind runs once and is rescheduled after now.
func (s *Scheduler) RunPending(ctx context.Context, now time.Time) int {
	ran := 0
	for len(s.queue) > 0 && !s.queue[0].next.After(now) {
		if ctx.Err() != nil {
			return ran
		}
		j := s.queue[0]

		s.runJob(ctx, j, now)
		ran++

		j.next = j.schedule.Next(now.In(s.loc))
		heap.Fix(&s.queue, j.index)
	}
	return ran
}

func (s *Scheduler) runJob(ctx context.Context, j *job, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: job %s panicked: %v", j.name, r)
		}
	}()

	start := time.Now()
	log.Printf("scheduler: running %s", j.name)
	j.fn(ctx, now)
	log.Printf("scheduler: completed %s in %s", j.name, time.Since(start).Round(time.Millisecond))
}

// Run blocks, sleeping until the next due time and dispatching due jobs, until
// ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.queue) == 0 {
		log.Println("scheduler: no jobs configured; nothing to schedule")
		<-ctx.Done()
		return nil
	}

	for {
		next, _ := s.NextRun()
		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-timer.C:
			s.RunPending(ctx, s.now())
		}
	}
}
