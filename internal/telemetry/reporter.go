// Package telemetry provides a best-effort usage reporter. The reporter only
// exists when the host extension metadata carries a telemetry key; everything
// degrades to a no-op otherwise, so no caller needs to care.
package telemetry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"nvim-markdown-preview/internal/logger"
)

// Metadata identifies the host extension. Read once at startup.
type Metadata struct {
	Name    string
	Version string
	Key     string
}

type event struct {
	Session    string            `json:"session"`
	Name       string            `json:"name"`
	Time       time.Time         `json:"time"`
	Extension  string            `json:"extension"`
	Version    string            `json:"version"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Reporter queues telemetry events and drains them in the background.
// All methods are safe on a nil receiver. Dispose is idempotent.
type Reporter struct {
	meta    Metadata
	session string
	log     *logger.Logger

	events chan event
	done   chan struct{}

	disposeOnce sync.Once
	wg          sync.WaitGroup
}

// New creates a reporter for the given metadata. Returns nil when the
// metadata carries no key; callers hold a nil reporter in that case.
func New(meta Metadata, log *logger.Logger) *Reporter {
	if meta.Key == "" {
		return nil
	}

	r := &Reporter{
		meta:    meta,
		session: uuid.NewString(),
		log:     log.WithField("component", "telemetry"),
		events:  make(chan event, 64),
		done:    make(chan struct{}),
	}

	r.wg.Add(1)
	go r.drain()
	return r
}

// SendEvent queues an event. Never blocks; events are dropped when the queue
// is full or the reporter is disposed.
func (r *Reporter) SendEvent(name string, properties map[string]string) {
	if r == nil {
		return
	}

	ev := event{
		Session:    r.session,
		Name:       name,
		Time:       time.Now().UTC(),
		Extension:  r.meta.Name,
		Version:    r.meta.Version,
		Properties: properties,
	}

	select {
	case <-r.done:
	case r.events <- ev:
	default:
	}
}

// Dispose stops the reporter and waits for queued events to drain.
// Safe to call more than once and safe after disposal.
func (r *Reporter) Dispose() {
	if r == nil {
		return
	}
	r.disposeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

func (r *Reporter) drain() {
	defer r.wg.Done()
	for {
		select {
		case ev := <-r.events:
			r.emit(ev)
		case <-r.done:
			for {
				select {
				case ev := <-r.events:
					r.emit(ev)
				default:
					return
				}
			}
		}
	}
}

// emit ships one event to the debug log sink.
func (r *Reporter) emit(ev event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	r.log.Debugf("event %s", data)
}
