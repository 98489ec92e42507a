package export

import (
	"context"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/metrics"
)

// AsyncRepository decouples the link from slow sinks. Publish never blocks:
// when the buffer is full the oldest queued snapshot is shed so the freshest
// one still goes out.
type AsyncRepository struct {
	repo   *Repository
	ch     chan interface{ ToBytes() ([]byte, error) }
	m      *metrics.Metrics
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewAsyncRepository(repo *Repository, buffer, workers int, m *metrics.Metrics) *AsyncRepository {
	if buffer <= 0 {
		buffer = 256
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	ar := &AsyncRepository{
		repo:   repo,
		ch:     make(chan interface{ ToBytes() ([]byte, error) }, buffer),
		m:      m,
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		ar.wg.Add(1)
		go ar.worker()
	}
	return ar
}

func (a *AsyncRepository) worker() {
	defer a.wg.Done()
	for {
		select {
		case msg, ok := <-a.ch:
			if !ok {
				return
			}
			if err := a.repo.Publish(msg); err != nil {
				log.WithField("err", err).Error("Failed to export snapshot")
			}
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *AsyncRepository) Publish(m interface{ ToBytes() ([]byte, error) }) error {
	select {
	case a.ch <- m:
		return nil
	case <-a.ctx.Done():
		return nil
	default:
	}

	// Buffer is full, shed the oldest queued snapshot and retry once.
	select {
	case <-a.ch:
		a.shed()
	default:
	}

	select {
	case a.ch <- m:
	case <-a.ctx.Done():
	default:
		a.shed()
	}
	return nil
}

func (a *AsyncRepository) shed() {
	if a.m != nil {
		a.m.ExportDropped.Inc()
	}
}

func (a *AsyncRepository) Close() {
	a.cancel()
	close(a.ch)
	a.wg.Wait()
}
