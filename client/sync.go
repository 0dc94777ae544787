package client

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// syncJob is one fire-and-forget remote call.
type syncJob struct {
	op  string
	iso string
	run func(ctx context.Context) error
}

// syncPool runs remote sync calls on a fixed set of workers. Submissions never
// block for longer than the handoff timeout; a saturated or closed pool drops
// the call.
type syncPool struct {
	jobs           chan syncJob
	wg             sync.WaitGroup
	callTimeout    time.Duration
	handoffTimeout time.Duration
	logger         *log.Logger

	mu     sync.RWMutex
	closed bool
}

func newSyncPool(workers, buffer int, callTimeout, handoffTimeout time.Duration, logger *log.Logger) *syncPool {
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	p := &syncPool{
		jobs:           make(chan syncJob, buffer),
		callTimeout:    callTimeout,
		handoffTimeout: handoffTimeout,
		logger:         logger,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	logger.Debugf("sync pool started, workers: %d, buffer: %d, timeout: %v, handoff: %v", workers, buffer, callTimeout, handoffTimeout)
	return p
}

func (p *syncPool) worker(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), p.callTimeout)
		err := j.run(ctx)
		cancel()
		if err != nil {
			p.logger.WithFields(log.Fields{
				"op":     j.op,
				"day":    j.iso,
				"worker": id,
			}).WithError(err).Debug("sync failed")
		}
	}
}

// submit hands j to a worker and reports whether it was accepted.
func (p *syncPool) submit(j syncJob) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.drop(j, "closed")
		return false
	}

	select {
	case p.jobs <- j:
		return true
	default:
	}
	if p.handoffTimeout <= 0 {
		p.drop(j, "saturated")
		return false
	}

	timer := time.NewTimer(p.handoffTimeout)
	defer timer.Stop()
	select {
	case p.jobs <- j:
		return true
	case <-timer.C:
		p.drop(j, "saturated")
		return false
	}
}

func (p *syncPool) drop(j syncJob, reason string) {
	p.logger.WithFields(log.Fields{"op": j.op, "day": j.iso}).Warnf("sync dropped: pool %s", reason)
}

// close stops accepting jobs and waits for queued ones to finish.
func (p *syncPool) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
