package protocol

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"bboard/domain"
)

// Fixed single-word replies.
const (
	LineWelcome = "WELCOME"
	LinePong    = "PONG"
	LineBye     = "BYE"
)

// Error codes carried on "ERR <CODE>" lines.
const (
	CodeUnknownCommand   = "UNKNOWN_COMMAND"
	CodeAlreadyLoggedIn  = "ALREADY_LOGGED_IN"
	CodeUsernameExists   = "USERNAME_EXISTS"
	CodeInvalidUsername  = "INVALID_USERNAME"
	CodeNotLoggedIn      = "NOT_LOGGED_IN"
	CodeGroupNotFound    = "GROUP_NOT_FOUND"
	CodeAlreadyJoined    = "ALREADY_JOINED"
	CodeNotMember        = "NOT_MEMBER"
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeInvalidMessageID = "INVALID_MESSAGE_ID"
	CodeMessageNotFound  = "MESSAGE_NOT_FOUND"
)

func Err(code string) string {
	return "ERR " + code
}

func OK(args ...string) string {
	return strings.Join(append([]string{"OK"}, args...), " ")
}

// GroupsLine renders "GROUPS <id:name,...>" for the configured group list.
func GroupsLine(groups []*domain.Group) string {
	pairs := lo.Map(groups, func(g *domain.Group, _ int) string {
		return fmt.Sprintf("%d:%s", g.ID, g.Name)
	})
	return "GROUPS " + strings.Join(pairs, ",")
}

// UsersLine renders "USERS <groupId> <comma list>". Names are sorted so the
// reply is deterministic regardless of map iteration order.
func UsersLine(groupID int, names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return fmt.Sprintf("USERS %d %s", groupID, strings.Join(sorted, ","))
}

func SummaryLine(groupID int, m domain.Message) string {
	return fmt.Sprintf("MESSAGE_SUMMARY %d %s", groupID, m.Summary())
}

func UserJoined(groupID int, name string) string {
	return fmt.Sprintf("USER_JOINED %d %s", groupID, name)
}

func UserLeft(groupID int, name string) string {
	return fmt.Sprintf("USER_LEFT %d %s", groupID, name)
}

func NewMessageLine(groupID int, m domain.Message) string {
	return fmt.Sprintf("NEW_MESSAGE %d %s", groupID, m.Summary())
}

func SearchResult(groupID int, m domain.Message) string {
	return fmt.Sprintf("SEARCH_RESULT %d %s", groupID, m.Summary())
}
