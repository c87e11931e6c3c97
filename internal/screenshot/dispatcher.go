package screenshot

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type (
	// A Store persists the screenshot location of a bookmark.
	Store interface {
		SetBookmarkScreenshot(id, screenshot string) error
	}

	// A Dispatcher captures screenshots in background workers.
	// Dispatch never blocks the caller: jobs are dropped when the queue is full.
	Dispatcher struct {
		capturer Capturer
		store    Store
		logger   logrus.FieldLogger
		timeout  time.Duration

		jobs chan job
		wg   sync.WaitGroup

		mu     sync.RWMutex
		closed bool
	}

	job struct {
		bookmarkID string
		url        string
	}
)

// NewDispatcher starts workers goroutines consuming a queue of the given size.
func NewDispatcher(capturer Capturer, store Store, logger logrus.FieldLogger, workers, queue int, timeout time.Duration) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	d := &Dispatcher{
		capturer: capturer,
		store:    store,
		logger:   logger,
		timeout:  timeout,
		jobs:     make(chan job, queue),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	logger.Infof("screenshot dispatcher started, workers: %d, queue: %d", workers, queue)

	return d
}

// Dispatch schedules the screenshot of the given bookmark.
// It returns false when the job is dropped.
func (d *Dispatcher) Dispatch(bookmarkID, url string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}

	select {
	case d.jobs <- job{bookmarkID: bookmarkID, url: url}:
		return true
	default:
		d.logger.WithField("bookmark_id", bookmarkID).Warn("screenshot queue is full, job dropped")
		return false
	}
}

// Capture takes the screenshot synchronously, persists and returns its location.
func (d *Dispatcher) Capture(ctx context.Context, bookmarkID, url string) (string, error) {
	location := d.capturer.Capture(ctx, url)
	if err := d.store.SetBookmarkScreenshot(bookmarkID, location); err != nil {
		return "", errors.Wrap(err, "could not persist screenshot")
	}
	return location, nil
}

// Close stops accepting jobs and waits for the queued ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for j := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		_, err := d.Capture(ctx, j.bookmarkID, j.url)
		cancel()

		if err != nil {
			// The bookmark may have been deleted in the meantime.
			d.logger.WithError(err).WithFields(logrus.Fields{
				"bookmark_id": j.bookmarkID,
				"worker":      id,
			}).Error("screenshot failed")
		}
	}
}
