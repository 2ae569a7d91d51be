package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// renderer prints server lines asynchronously without corrupting the
// interactive prompt: each line is printed on its own row and the prompt
// reprinted afterwards.
type renderer struct {
	colours bool
}

func (r renderer) serverLine(line string) {
	verb, rest, _ := strings.Cut(line, " ")

	switch verb {
	case "GROUPS":
		r.groupsTable(rest)
	case "USERS":
		r.usersTable(rest)
	case "NEW_MESSAGE", "MESSAGE_SUMMARY", "SEARCH_RESULT":
		fmt.Println(r.paint(color.FgYellow, "[SERVER] "+line))
	case "USER_JOINED", "USER_LEFT":
		fmt.Println(r.paint(color.FgCyan, "[SERVER] "+line))
	case "ERR":
		fmt.Println(r.paint(color.FgRed, "[SERVER] "+line))
	case "OK", "WELCOME", "PONG", "BYE":
		fmt.Println(r.paint(color.FgGreen, "[SERVER] "+line))
	default:
		fmt.Println("[SERVER] " + line)
	}
	fmt.Print("> ")
}

func (r renderer) local(msg string) {
	fmt.Println(msg)
}

func (r renderer) paint(fg color.Color, str string) string {
	if !r.colours {
		return str
	}
	return color.New(fg).Render(str)
}

// groupsTable renders a "GROUPS <id:name,...>" payload as a table.
func (r renderer) groupsTable(rest string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Group"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, pair := range strings.Split(rest, ",") {
		if id, name, found := strings.Cut(pair, ":"); found {
			table.Append([]string{id, name})
		}
	}
	fmt.Println()
	table.Render()
}

// usersTable renders a "USERS <groupId> <name,...>" payload as a table.
func (r renderer) usersTable(rest string) {
	groupID, names, _ := strings.Cut(rest, " ")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Group " + groupID})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, name := range strings.Split(names, ",") {
		if name != "" {
			table.Append([]string{name})
		}
	}
	fmt.Println()
	table.Render()
}
