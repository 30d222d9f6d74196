package jobs

import (
	"context"
	"log"
	"time"
)

// Sweeper defines the interface for a unit of periodic background work
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// Worker runs a Sweeper once at startup and then on a fixed interval
// until stopped.
type Worker struct {
	sweeper  Sweeper
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(sweeper Sweeper, interval time.Duration) *Worker {
	return &Worker{
		sweeper:  sweeper,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the sweep loop. It blocks until the context is cancelled or
// Stop is called, so callers usually run it in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.doneChan)

	log.Printf("background worker started, sweep interval %v", w.interval)

	if err := w.sweeper.Sweep(ctx); err != nil {
		log.Printf("background sweep failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("background worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("background worker stopped")
			return
		case <-ticker.C:
			if err := w.sweeper.Sweep(ctx); err != nil {
				log.Printf("background sweep failed: %v", err)
			}
		}
	}
}

// Stop signals the worker to exit and waits for the loop to finish.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
