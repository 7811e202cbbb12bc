package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"parkeasy/internal/repository"

	"github.com/robfig/cron/v3"
)

type OverdueFinder interface {
	GetOverdueActiveBookings(ctx context.Context, now time.Time) ([]repository.OverdueBooking, error)
}

type OverdueCompleter interface {
	CompleteOverdue(ctx context.Context, b repository.OverdueBooking) (bool, error)
}

type JobService struct {
	Repo     OverdueFinder
	Bookings OverdueCompleter
	log      *slog.Logger
	now      func() time.Time
}

func NewJobService(repo OverdueFinder, bookings OverdueCompleter, log *slog.Logger) *JobService {
	return &JobService{Repo: repo, Bookings: bookings, log: log, now: time.Now}
}

// CompleteOverdueBookings marks active bookings whose end time has passed as
// completed and returns their slots to the spot. Each booking is released in
// its own transaction so one failure does not block the rest.
func (s *JobService) CompleteOverdueBookings(ctx context.Context) (int, error) {
	overdue, err := s.Repo.GetOverdueActiveBookings(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep: find overdue bookings: %w", err)
	}
	if len(overdue) == 0 {
		s.log.Debug("sweep: no overdue bookings")
		return 0, nil
	}

	completed := 0
	for _, b := range overdue {
		ok, err := s.Bookings.CompleteOverdue(ctx, b)
		if err != nil {
			s.log.Error("sweep: complete booking failed", "booking_id", b.ID, "spot_id", b.ParkingSpotID, "error", err)
			continue
		}
		if ok {
			completed++
		}
	}
	s.log.Info("sweep: overdue bookings completed", "found", len(overdue), "completed", completed)
	return completed, nil
}

// Schedule registers the sweep on c with a cron spec such as "@every 5m".
func (s *JobService) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.CompleteOverdueBookings(ctx); err != nil {
			s.log.Error("sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep %q: %w", spec, err)
	}
	return nil
}
