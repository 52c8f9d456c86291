package models

import "strings"

// CommandType enumerates supported chat command categories.
type CommandType string

const (
	CommandHelp      CommandType = "help"
	CommandDashboard CommandType = "dashboard"
	CommandAnimals   CommandType = "animals"
	CommandButchers  CommandType = "butchers"
	CommandFinance   CommandType = "finance"
	CommandBuy       CommandType = "buy"
	CommandFeed      CommandType = "feed"
	CommandVaccinate CommandType = "vaccinate"
	CommandSell      CommandType = "sell"
	CommandDelete    CommandType = "delete"
	CommandConfirm   CommandType = "confirm"
	CommandCancel    CommandType = "cancel"
	CommandUnknown   CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"help":      CommandHelp,
	"start":     CommandHelp,
	"dashboard": CommandDashboard,
	"stats":     CommandDashboard,
	"animals":   CommandAnimals,
	"butchers":  CommandButchers,
	"finance":   CommandFinance,
	"buy":       CommandBuy,
	"feed":      CommandFeed,
	"vaccinate": CommandVaccinate,
	"sell":      CommandSell,
	"delete":    CommandDelete,
	"confirm":   CommandConfirm,
	"yes":       CommandConfirm,
	"cancel":    CommandCancel,
	"no":        CommandCancel,
}

// Command represents a parsed instruction extracted from chat text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from a free-form chat message. Only the command
// word is case-folded; arguments keep their case so names survive.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := commandAliases[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
