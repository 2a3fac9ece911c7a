package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// PanelSweeper is the part of the panel registry the sweeper drives.
type PanelSweeper interface {
	Sweep(now time.Time, maxIdle time.Duration) int
}

// Sweeper periodically evicts idle panels from the registry.
type Sweeper struct {
	panels   PanelSweeper
	interval time.Duration
	maxIdle  time.Duration
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSweeper(panels PanelSweeper, interval, maxIdle time.Duration) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		panels:   panels,
		interval: interval,
		maxIdle:  maxIdle,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	log.Printf("Panel sweeper started (interval=%v, max idle=%v)", s.interval, s.maxIdle)

	s.wg.Add(1)
	go s.loop()
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.SweepNow()
		}
	}
}

// SweepNow runs one eviction pass and returns how many panels were removed.
func (s *Sweeper) SweepNow() int {
	return s.panels.Sweep(s.now(), s.maxIdle)
}

// Shutdown stops the loop and waits for it to exit.
func (s *Sweeper) Shutdown() {
	s.cancel()
	s.wg.Wait()
	log.Println("Panel sweeper stopped")
}
