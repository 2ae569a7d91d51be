package runtime

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const lineTimeout = 2 * time.Second

// testClient drives one end of a net.Pipe against a running session.
type testClient struct {
	t    *testing.T
	conn net.Conn
	sc   *bufio.Scanner
}

// dial wires a session to a pipe, runs it, and consumes the greeting.
func dial(t *testing.T, e *Engine) *testClient {
	t.Helper()
	server, client := net.Pipe()
	session := e.NewSession(server)
	go session.Run(context.Background())

	tc := &testClient{t: t, conn: client, sc: bufio.NewScanner(client)}
	t.Cleanup(func() { _ = client.Close() })

	tc.expect("WELCOME")
	tc.expectPrefix("GROUPS ")
	return tc
}

func (c *testClient) send(line string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetWriteDeadline(time.Now().Add(lineTimeout)))
	_, err := fmt.Fprintf(c.conn, "%s\n", line)
	require.NoError(c.t, err)
}

func (c *testClient) readLine() string {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(lineTimeout)))
	require.True(c.t, c.sc.Scan(), "expected a server line, got: %v", c.sc.Err())
	return c.sc.Text()
}

func (c *testClient) expect(want string) {
	c.t.Helper()
	require.Equal(c.t, want, c.readLine())
}

func (c *testClient) expectPrefix(prefix string) string {
	c.t.Helper()
	line := c.readLine()
	require.True(c.t, strings.HasPrefix(line, prefix), "want prefix %q, got %q", prefix, line)
	return line
}

func (c *testClient) login(name string) {
	c.t.Helper()
	c.send("LOGIN " + name)
	c.expect("OK LOGIN")
}

func (c *testClient) join(group, name string) {
	c.t.Helper()
	c.send("JOIN " + group)
	c.expect("OK JOIN " + name)
	c.expectPrefix("USERS ")
}

func TestSession_Greeting(t *testing.T) {
	e := newTestEngine(t)
	server, client := net.Pipe()
	session := e.NewSession(server)
	go session.Run(context.Background())
	t.Cleanup(func() { _ = client.Close() })

	tc := &testClient{t: t, conn: client, sc: bufio.NewScanner(client)}
	tc.expect("WELCOME")
	tc.expect("GROUPS 1:General,2:Tech Talk")
}

func TestSession_LoginScenarios(t *testing.T) {
	e := newTestEngine(t)
	a := dial(t, e)
	b := dial(t, e)

	// alice logs in first
	a.login("alice")

	// a second LOGIN on the same session is rejected
	a.send("LOGIN other")
	a.expect("ERR ALREADY_LOGGED_IN")

	// the name collides case-insensitively and never displaces the first
	b.send("LOGIN ALICE")
	b.expect("ERR USERNAME_EXISTS")

	b.send("LOGIN")
	b.expect("ERR INVALID_USERNAME")

	b.login("bob")
}

func TestSession_UnauthenticatedAccess(t *testing.T) {
	e := newTestEngine(t)
	c := dial(t, e)

	c.send("JOIN 1")
	c.expect("ERR NOT_LOGGED_IN")
	c.send("GET_MESSAGE 1")
	c.expect("ERR NOT_LOGGED_IN")

	// LOGIN, GROUPS, PING and QUIT stay open to anonymous sessions
	c.send("GROUPS")
	c.expect("GROUPS 1:General,2:Tech Talk")
	c.send("PING")
	c.expect("PONG")
	c.send("NONSENSE")
	c.expect("ERR UNKNOWN_COMMAND")
	c.send("QUIT")
	c.expect("BYE")
}

func TestSession_JoinAndMembershipNotifications(t *testing.T) {
	e := newTestEngine(t)
	a := dial(t, e)
	b := dial(t, e)
	a.login("alice")
	b.login("bob")

	a.send("JOIN 1")
	a.expect("OK JOIN General")
	a.expect("USERS 1 ")

	// joining by name works too, and twice is an error
	a.send("JOIN general")
	a.expect("ERR ALREADY_JOINED")
	a.send("JOIN 99")
	a.expect("ERR GROUP_NOT_FOUND")

	b.send("JOIN 1")
	b.expect("OK JOIN General")
	b.expect("USERS 1 alice")

	// alice is notified about bob, excluding bob himself
	a.expect("USER_JOINED 1 bob")

	a.send("USERS 1")
	a.expect("USERS 1 bob")
}

func TestSession_PostBroadcastAndVisibility(t *testing.T) {
	e := newTestEngine(t)
	a := dial(t, e)
	b := dial(t, e)
	c := dial(t, e)
	a.login("alice")
	b.login("bob")
	c.login("carol")
	a.join("1", "General")
	b.join("1", "General")
	a.expect("USER_JOINED 1 bob")

	// alice posts; she gets the ack, bob the push, carol nothing
	a.send("MESSAGE 1 Hello|World")
	a.expect("OK MESSAGE")

	push := b.expectPrefix("NEW_MESSAGE 1 1|alice|")
	require.True(t, strings.HasSuffix(push, "|Hello"), "got %q", push)

	// content is visible to members only
	b.send("GET_MESSAGE 1")
	b.expect("World")

	c.send("GET_MESSAGE 1")
	c.expect("ERR MESSAGE_NOT_FOUND")

	b.send("GET_MESSAGE abc")
	b.expect("ERR INVALID_MESSAGE_ID")
	b.send("GET_MESSAGE 999")
	b.expect("ERR MESSAGE_NOT_FOUND")

	// posting requires membership, and an empty payload is malformed
	c.send("MESSAGE 1 sneaky|post")
	c.expect("ERR NOT_MEMBER")
	b.send("MESSAGE 1")
	b.expect("ERR INVALID_FORMAT")
}

func TestSession_WithinGroupOrderingAndBackfill(t *testing.T) {
	e := newTestEngine(t)
	a := dial(t, e)
	b := dial(t, e)
	a.login("alice")
	b.login("bob")
	a.join("1", "General")
	b.join("1", "General")
	a.expect("USER_JOINED 1 bob")

	// three posts arrive at bob in append order
	for i := 1; i <= 3; i++ {
		a.send(fmt.Sprintf("MESSAGE 1 s%d|body%d", i, i))
		a.expect("OK MESSAGE")
		b.expectPrefix(fmt.Sprintf("NEW_MESSAGE 1 %d|alice|", i))
	}

	// leaving and rejoining backfills at most the last two, oldest first
	b.send("LEAVE 1")
	b.expect("OK LEAVE General")
	a.expect("USER_LEFT 1 bob")

	b.send("JOIN 1")
	b.expect("OK JOIN General")
	b.expect("USERS 1 alice")
	b.expectPrefix("MESSAGE_SUMMARY 1 2|alice|")
	b.expectPrefix("MESSAGE_SUMMARY 1 3|alice|")

	// nothing else was backfilled
	b.send("PING")
	b.expect("PONG")

	a.expect("USER_JOINED 1 bob")
}

func TestSession_LeaveRequiresMembership(t *testing.T) {
	e := newTestEngine(t)
	a := dial(t, e)
	a.login("alice")

	a.send("LEAVE 1")
	a.expect("ERR NOT_MEMBER")
	a.send("LEAVE 99")
	a.expect("ERR GROUP_NOT_FOUND")
}

func TestSession_AbruptDisconnect(t *testing.T) {
	e := newTestEngine(t)
	a := dial(t, e)
	b := dial(t, e)
	a.login("alice")
	b.login("bob")
	a.join("1", "General")
	b.join("1", "General")
	a.expect("USER_JOINED 1 bob")

	// alice's transport dies mid-session
	_ = a.conn.Close()

	// bob sees exactly one USER_LEFT, then normal service
	b.expect("USER_LEFT 1 alice")
	b.send("PING")
	b.expect("PONG")

	// alice's name becomes available again
	require.Eventually(t, func() bool {
		return !e.Registry.UsernameTaken("alice")
	}, lineTimeout, 10*time.Millisecond)

	c := dial(t, e)
	c.login("alice")
}

func TestSession_QuitTearsDown(t *testing.T) {
	e := newTestEngine(t)
	a := dial(t, e)
	a.login("alice")
	a.join("1", "General")

	a.send("QUIT")
	a.expect("BYE")

	require.Eventually(t, func() bool {
		return e.Registry.SessionCount() == 0
	}, lineTimeout, 10*time.Millisecond)

	g, _ := e.Registry.GroupByIdentifier("1")
	require.Equal(t, 0, g.MemberCount())
}

func TestSession_SearchWithinGroup(t *testing.T) {
	e := newTestEngine(t)
	a := dial(t, e)
	a.login("alice")
	a.join("1", "General")

	a.send("MESSAGE 1 Release notes|shipping friday")
	a.expect("OK MESSAGE")
	a.send("MESSAGE 1 Lunch|pizza again")
	a.expect("OK MESSAGE")

	a.send("SEARCH 1 release")
	a.expectPrefix("SEARCH_RESULT 1 1|alice|")
	a.expect("OK SEARCH 1")

	a.send("SEARCH 1 nothing-matches-this")
	a.expect("OK SEARCH 0")

	// search is membership-gated like every other group read
	a.send("SEARCH 2 release")
	a.expect("ERR NOT_MEMBER")
	a.send("SEARCH 2")
	a.expect("ERR INVALID_FORMAT")
}

func TestSession_PostedContentIsCensored(t *testing.T) {
	e := newTestEngine(t) // dictionary contains "badger"
	a := dial(t, e)
	a.login("alice")
	a.join("1", "General")

	a.send("MESSAGE 1 Wildlife|that badger bites")
	a.expect("OK MESSAGE")

	a.send("GET_MESSAGE 1")
	a.expect("that ****** bites")
}
