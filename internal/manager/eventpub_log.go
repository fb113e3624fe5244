package manager

import "github.com/rs/zerolog"

// LogPublisher writes every event to a zerolog logger at info level;
// failure events are logged as warnings.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(l zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: l.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(e Event) {
	ev := p.log.Info()
	switch e.Name {
	case EventLoadFailed, EventDecodeFailed:
		ev = p.log.Warn()
	}
	if e.HandleID != "" {
		ev = ev.Str("handle", e.HandleID)
	}
	ev.Fields(e.Fields).Msg(e.Name)
}
