package runtime

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"bboard/domain"
	"bboard/errors"
	"bboard/protocol"
)

// maxLineBytes bounds a single protocol line so one client cannot balloon
// the read buffer.
const maxLineBytes = 64 * 1024

// Session is the server-side handler for one connection. A reader goroutine
// parses and dispatches lines; a writer goroutine drains the buffered
// outbound queue so a slow peer never stalls anyone else's broadcast.
//
// The joined map is touched only by the reader goroutine. The username is
// written once, under the registry lock, and read concurrently by group
// snapshots, hence its own mutex.
type Session struct {
	id     uuid.UUID
	conn   net.Conn
	engine *Engine
	log    *slog.Logger

	mu       sync.RWMutex
	username string

	joined map[int]*domain.Group

	out        chan string
	writerDone chan struct{}
}

// ID implements domain.Member.
func (s *Session) ID() uuid.UUID { return s.id }

// Username implements domain.Member. Empty until a successful LOGIN.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Session) setUsername(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = name
}

// Push implements domain.Member. It enqueues one line without ever
// blocking: when the peer cannot keep up the line is counted and dropped,
// never propagated as an error to the broadcaster.
func (s *Session) Push(line string) {
	select {
	case s.out <- line:
		s.engine.Stats.BroadcastLines.Add(1)
	default:
		s.engine.Stats.DroppedLines.Add(1)
		s.log.Warn("Outbound queue full, dropping line")
	}
}

// CloseConn force-closes the transport, unblocking the reader.
func (s *Session) CloseConn() {
	_ = s.conn.Close()
}

// Run serves the connection until QUIT, EOF or a transport error, then
// tears the session down: leave every group (emitting USER_LEFT once per
// group), drop from the registry, close the queue and the socket.
func (s *Session) Run(ctx context.Context) {
	defer s.teardown()
	go s.writeLoop()

	s.Push(protocol.LineWelcome)
	s.Push(protocol.GroupsLine(s.engine.Registry.Groups()))

	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		cmd, ok := protocol.Parse(scanner.Text())
		if !ok {
			continue
		}
		replies, quit := s.dispatch(ctx, cmd)
		for _, line := range replies {
			s.Push(line)
		}
		if quit {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		// Abrupt disconnect: implicit QUIT, nothing to send to a gone peer.
		s.log.Debug("Connection lost", "error", err)
	}
}

func (s *Session) teardown() {
	name := s.Username()
	for gid, g := range s.joined {
		g.Leave(s.id, protocol.UserLeft(gid, name))
	}
	s.joined = make(map[int]*domain.Group)

	s.engine.Registry.Drop(s)

	// No group references this session anymore, so nothing can Push
	// concurrently with the close.
	close(s.out)
	<-s.writerDone
	_ = s.conn.Close()
	s.engine.Stats.SessionsActive.Add(-1)
	s.log.Debug("Session closed", "username", name)
}

func (s *Session) writeLoop() {
	defer close(s.writerDone)

	w := bufio.NewWriter(s.conn)
	for line := range s.out {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return
		}
		if len(s.out) == 0 {
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
	_ = w.Flush()
}

// dispatch executes one parsed command and returns the reply lines for the
// caller plus whether the connection should close. Broadcast side effects
// run inside the group methods; replies never do I/O here.
func (s *Session) dispatch(ctx context.Context, cmd protocol.Command) ([]string, bool) {
	if protocol.RequiresAuth(cmd) && s.Username() == "" {
		return []string{protocol.Err(protocol.CodeNotLoggedIn)}, false
	}

	switch c := cmd.(type) {
	case protocol.Login:
		return s.handleLogin(c), false
	case protocol.Join:
		return s.handleJoin(c), false
	case protocol.Leave:
		return s.handleLeave(c), false
	case protocol.Post:
		return s.handlePost(c), false
	case protocol.GetMessage:
		return s.handleGetMessage(c), false
	case protocol.Users:
		return s.handleUsers(c), false
	case protocol.Groups:
		return []string{protocol.GroupsLine(s.engine.Registry.Groups())}, false
	case protocol.Search:
		return s.handleSearch(ctx, c), false
	case protocol.Ping:
		return []string{protocol.LinePong}, false
	case protocol.Quit:
		return []string{protocol.LineBye}, true
	case protocol.Malformed:
		return []string{protocol.Err(protocol.CodeInvalidFormat)}, false
	default:
		return []string{protocol.Err(protocol.CodeUnknownCommand)}, false
	}
}

func (s *Session) handleLogin(c protocol.Login) []string {
	if err := domain.ValidateUsername(c.Name); err != nil {
		return []string{protocol.Err(protocol.CodeInvalidUsername)}
	}
	switch err := s.engine.Registry.Login(s, c.Name); err {
	case nil:
		s.log.Info("User logged in", "username", c.Name)
		return []string{protocol.OK("LOGIN")}
	case errors.ErrAlreadyLoggedIn:
		return []string{protocol.Err(protocol.CodeAlreadyLoggedIn)}
	default:
		return []string{protocol.Err(protocol.CodeUsernameExists)}
	}
}

func (s *Session) handleJoin(c protocol.Join) []string {
	g, ok := s.engine.Registry.GroupByIdentifier(c.Group)
	if !ok {
		return []string{protocol.Err(protocol.CodeGroupNotFound)}
	}

	names, recent, joined := g.Join(s, s.engine.backfillCount, protocol.UserJoined(g.ID, s.Username()))
	if !joined {
		return []string{protocol.Err(protocol.CodeAlreadyJoined)}
	}
	s.joined[g.ID] = g

	replies := []string{
		protocol.OK("JOIN", g.Name),
		protocol.UsersLine(g.ID, names),
	}
	replies = append(replies, lo.Map(recent, func(m domain.Message, _ int) string {
		return protocol.SummaryLine(g.ID, m)
	})...)
	return replies
}

func (s *Session) handleLeave(c protocol.Leave) []string {
	g, ok := s.engine.Registry.GroupByIdentifier(c.Group)
	if !ok {
		return []string{protocol.Err(protocol.CodeGroupNotFound)}
	}
	if _, member := s.joined[g.ID]; !member {
		return []string{protocol.Err(protocol.CodeNotMember)}
	}
	delete(s.joined, g.ID)
	g.Leave(s.id, protocol.UserLeft(g.ID, s.Username()))
	return []string{protocol.OK("LEAVE", g.Name)}
}

func (s *Session) handlePost(c protocol.Post) []string {
	g, ok := s.engine.Registry.GroupByIdentifier(c.Group)
	if !ok {
		return []string{protocol.Err(protocol.CodeGroupNotFound)}
	}
	if _, member := s.joined[g.ID]; !member {
		return []string{protocol.Err(protocol.CodeNotMember)}
	}

	subject, _ := s.engine.Moderator.Censor(c.Subject)
	content, censored := s.engine.Moderator.Censor(c.Content)
	if len(censored) > 0 {
		s.log.Info("Censored post", "username", s.Username(), "group", g.ID, "words", len(censored))
	}

	msg := domain.NewMessage(s.engine.Registry.NextMessageID(), s.Username(), subject, content, time.Now().UTC())
	g.Post(msg, protocol.NewMessageLine(g.ID, msg), s.id)
	s.engine.Stats.MessagesPosted.Add(1)

	if err := s.engine.Index.Add(g.ID, msg); err != nil {
		s.log.Warn("Failed to index message", "id", msg.ID, "error", err)
	}
	return []string{protocol.OK("MESSAGE")}
}

func (s *Session) handleGetMessage(c protocol.GetMessage) []string {
	id, err := strconv.Atoi(c.Raw)
	if err != nil {
		return []string{protocol.Err(protocol.CodeInvalidMessageID)}
	}

	msg, groupID, found := s.engine.Registry.FindMessage(id)
	if !found {
		return []string{protocol.Err(protocol.CodeMessageNotFound)}
	}
	// Visibility is gated on membership: an existing id in a foreign group
	// is indistinguishable from a missing one.
	if _, member := s.joined[groupID]; !member {
		return []string{protocol.Err(protocol.CodeMessageNotFound)}
	}
	return []string{msg.Content}
}

func (s *Session) handleUsers(c protocol.Users) []string {
	g, ok := s.engine.Registry.GroupByIdentifier(c.Group)
	if !ok {
		return []string{protocol.Err(protocol.CodeGroupNotFound)}
	}
	if _, member := s.joined[g.ID]; !member {
		return []string{protocol.Err(protocol.CodeNotMember)}
	}
	return []string{protocol.UsersLine(g.ID, g.Usernames(s.id))}
}

func (s *Session) handleSearch(ctx context.Context, c protocol.Search) []string {
	g, ok := s.engine.Registry.GroupByIdentifier(c.Group)
	if !ok {
		return []string{protocol.Err(protocol.CodeGroupNotFound)}
	}
	if _, member := s.joined[g.ID]; !member {
		return []string{protocol.Err(protocol.CodeNotMember)}
	}

	ids, err := s.engine.Index.Query(ctx, g.ID, c.Terms, s.engine.searchLimit)
	if err != nil {
		s.log.Error("Search failed", "group", g.ID, "error", err)
		return []string{protocol.Err(protocol.CodeInvalidFormat)}
	}

	var replies []string
	for _, id := range ids {
		if msg, found := g.MessageByID(id); found {
			replies = append(replies, protocol.SearchResult(g.ID, msg))
		}
	}
	return append(replies, protocol.OK("SEARCH", strconv.Itoa(len(replies))))
}
