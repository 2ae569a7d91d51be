package runtime

import (
	"context"
	"log/slog"
	"net"

	"bboard/contract"
)

var _ contract.Worker = (*Listener)(nil)

// Listener is the accept loop, run as a supervised worker. It never rejects
// a connection based on load; admission control is a known limitation.
type Listener struct {
	addr   string
	engine *Engine
	log    *slog.Logger
}

func NewListener(addr string, engine *Engine, log *slog.Logger) *Listener {
	return &Listener{addr: addr, engine: engine, log: log}
}

func (l *Listener) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	l.log.Info("Bulletin board listening", "addr", l.addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				// Shutdown closed the listener: terminate cleanly so the
				// supervisor does not restart us.
				return nil
			}
			return err
		}
		session := l.engine.NewSession(conn)
		go session.Run(ctx)
	}
}
