package runtime

import (
	"log/slog"
	"net"

	"github.com/google/uuid"

	"bboard/domain"
	"bboard/moderation"
	"bboard/observability"
	"bboard/search"
)

// Engine bundles everything a session needs to serve requests: the
// registry, the censor, the search index and the shared counters.
type Engine struct {
	Registry  *Registry
	Moderator *moderation.Moderator
	Index     *search.Index
	Stats     *observability.Stats

	backfillCount int
	searchLimit   int
	queueSize     int
	log           *slog.Logger
}

type EngineConfig struct {
	BackfillCount int
	SearchLimit   int
	QueueSize     int
}

func NewEngine(registry *Registry, moderator *moderation.Moderator, index *search.Index,
	stats *observability.Stats, cfg EngineConfig, log *slog.Logger) *Engine {
	return &Engine{
		Registry:      registry,
		Moderator:     moderator,
		Index:         index,
		Stats:         stats,
		backfillCount: cfg.BackfillCount,
		searchLimit:   cfg.SearchLimit,
		queueSize:     cfg.QueueSize,
		log:           log,
	}
}

// NewSession binds a session to an accepted connection and registers it in
// the live set. The caller runs it with Session.Run.
func (e *Engine) NewSession(conn net.Conn) *Session {
	s := &Session{
		id:         uuid.New(),
		conn:       conn,
		engine:     e,
		joined:     make(map[int]*domain.Group),
		out:        make(chan string, e.queueSize),
		writerDone: make(chan struct{}),
		log:        e.log.With("session", shortID(conn)),
	}
	e.Registry.Attach(s)
	e.Stats.ConnectionsTotal.Add(1)
	e.Stats.SessionsActive.Add(1)
	return s
}

func shortID(conn net.Conn) string {
	if conn == nil || conn.RemoteAddr() == nil {
		return "unknown"
	}
	return conn.RemoteAddr().String()
}
