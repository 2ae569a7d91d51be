// Command client is a thin interactive adapter over the board protocol:
// it maps %-commands onto protocol verbs and renders unsolicited server
// lines asynchronously. It carries no invariants of its own.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	c := &client{cfg: cfg, r: renderer{colours: cfg.Colours}}
	c.loop()
}

type client struct {
	cfg  Config
	r    renderer
	conn net.Conn
}

func (c *client) loop() {
	c.r.local("Bulletin Board Client Started.")
	c.r.local("Commands:")
	c.r.local("  %connect [host port]")
	c.r.local("  %login <name>")
	c.r.local("  %groups")
	c.r.local("  %join / %groupjoin <group>")
	c.r.local("  %post <subject>|<body> / %grouppost <group> <subject>|<body>")
	c.r.local("  %users / %groupusers <group>")
	c.r.local("  %message <id>")
	c.r.local("  %search <group> <terms>")
	c.r.local("  %leave / %groupleave <group>")
	c.r.local("  %exit")
	c.r.local("")

	stdin := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for stdin.Scan() {
		input := strings.TrimSpace(stdin.Text())
		if input == "" {
			fmt.Print("> ")
			continue
		}
		if c.handle(input) {
			return
		}
		fmt.Print("> ")
	}
}

// handle translates one user command; returns true when the client should
// exit.
func (c *client) handle(input string) bool {
	cmd, arg, _ := strings.Cut(input, " ")

	if cmd == "%connect" {
		c.connect(arg)
		return false
	}
	if c.conn == nil {
		c.r.local("ERROR: Not connected. Use %connect first.")
		return false
	}

	switch cmd {
	case "%login":
		c.send("LOGIN " + arg)
	case "%groups":
		c.send("GROUPS")
	case "%join":
		c.send("JOIN " + c.cfg.DefaultGroup)
	case "%groupjoin":
		c.send("JOIN " + arg)
	case "%post":
		c.send("MESSAGE " + c.cfg.DefaultGroup + " " + arg)
	case "%grouppost":
		c.send("MESSAGE " + arg)
	case "%users":
		c.send("USERS " + c.cfg.DefaultGroup)
	case "%groupusers":
		c.send("USERS " + arg)
	case "%message":
		c.send("GET_MESSAGE " + arg)
	case "%search":
		c.send("SEARCH " + arg)
	case "%leave":
		c.send("LEAVE " + c.cfg.DefaultGroup)
	case "%groupleave":
		c.send("LEAVE " + arg)
	case "%ping":
		c.send("PING")
	case "%exit":
		c.send("QUIT")
		_ = c.conn.Close()
		return true
	default:
		c.r.local("Unknown command: " + cmd)
	}
	return false
}

func (c *client) connect(arg string) {
	addr := c.cfg.ServerAddr
	if fields := strings.Fields(arg); len(fields) == 2 {
		addr = net.JoinHostPort(fields[0], fields[1])
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		c.r.local("ERROR: " + err.Error())
		return
	}
	c.conn = conn
	c.r.local("Connected to server at " + addr)

	go c.listen(conn)
}

// listen prints server pushes as they arrive, independent of the prompt.
func (c *client) listen(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		fmt.Println()
		c.r.serverLine(scanner.Text())
	}
	fmt.Println()
	c.r.local("Server connection closed.")
}

func (c *client) send(line string) {
	if _, err := fmt.Fprintf(c.conn, "%s\n", strings.TrimSpace(line)); err != nil {
		c.r.local("ERROR sending command: " + err.Error())
	}
}
