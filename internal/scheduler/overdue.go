// Package scheduler runs the periodic background jobs.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// LoanMarker persists the derived overdue status for loans past due.
type LoanMarker interface {
	MarkOverdue(now time.Time) (int64, error)
}

// OverdueSweeper periodically marks loans past their due date as
// overdue. The status is also derived at read time; the sweep just
// keeps the stored rows honest for listings and reporting.
type OverdueSweeper struct {
	loans    LoanMarker
	schedule string

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewOverdueSweeper creates a sweeper with a standard 5-field cron
// schedule, e.g. "0 2 * * *" for 02:00 daily.
func NewOverdueSweeper(loans LoanMarker, schedule string) *OverdueSweeper {
	return &OverdueSweeper{
		loans:    loans,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start schedules the sweep. Calling Start on a running sweeper is a
// no-op.
func (s *OverdueSweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Overdue sweep scheduled: %s", s.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *OverdueSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Printf("Overdue sweep stopped")
}

// RunNow executes one sweep immediately, outside the schedule.
func (s *OverdueSweeper) RunNow() (int64, error) {
	return s.loans.MarkOverdue(time.Now().UTC())
}

func (s *OverdueSweeper) runSweep() {
	marked, err := s.RunNow()
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return
	}
	if marked > 0 {
		log.Printf("Overdue sweep marked %d loans", marked)
	}
}
