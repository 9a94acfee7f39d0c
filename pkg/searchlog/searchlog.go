package searchlog

import (
	"sync"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/util"
)

// AppendHook is run in the background for every event appended to the log,
// in append order
type AppendHook func(event ctdf.SearchEvent)

type registeredHook struct {
	run   AppendHook
	queue *util.SerialQueue
}

// Log is the append only record of bus searches made since the process
// started, optionally seeded from persisted history
type Log struct {
	mutex sync.RWMutex

	events []ctdf.SearchEvent
	hooks  []registeredHook
}

func New() *Log {
	return &Log{
		events: []ctdf.SearchEvent{},
	}
}

func (l *Log) OnAppend(hook AppendHook) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.hooks = append(l.hooks, registeredHook{run: hook, queue: &util.SerialQueue{}})
}

func (l *Log) Append(event ctdf.SearchEvent) {
	event.MatchedBusIDs = append([]string{}, event.MatchedBusIDs...)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.events = append(l.events, event)

	for _, hook := range l.hooks {
		hook := hook
		hook.queue.Submit(func() { hook.run(event) })
	}
}

// Replay seeds the log with previously persisted events. Hooks are not run.
func (l *Log) Replay(events []ctdf.SearchEvent) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.events = append(l.events, events...)

	log.Info().Int("length", len(events)).Msg("Replayed search history")
}

func (l *Log) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return len(l.events)
}

// Events returns a copy of every event in append order. Matched bus id
// slices are shared as events are never mutated once appended.
func (l *Log) Events() []ctdf.SearchEvent {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	events := make([]ctdf.SearchEvent, 0, len(l.events))
	if err := copier.Copy(&events, l.events); err != nil {
		log.Error().Err(err).Msg("Failed to copy search events")
		events = append(events[:0], l.events...)
	}

	return events
}
