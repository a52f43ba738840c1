package core

import "github.com/dkeye/canvas/internal/domain"

// Session binds a connection identity and its transport endpoint.
// This is what the registry stores and the dispatcher fans out to.
type Session interface {
	Meta() domain.Conn
	Signal() SignalConnection
}

type session struct {
	meta   domain.Conn
	signal SignalConnection
}

func NewSession(meta domain.Conn, signal SignalConnection) Session {
	return &session{meta: meta, signal: signal}
}

func (s *session) Meta() domain.Conn        { return s.meta }
func (s *session) Signal() SignalConnection { return s.signal }
