// Package policy implements the pre-execution command safety filter.
package policy

import (
	"fmt"
	"strings"
)

// denyRule pairs a forbidden substring with the reason it is blocked.
// Matching is case-insensitive against the whole command text.
type denyRule struct {
	Pattern string
	Reason  string
}

var denyRules = []denyRule{
	// Destructive filesystem operations
	{"rm -rf /", "recursive delete of filesystem root"},
	{"rm -rf ~", "recursive delete of home directory"},
	{"rm -rf *", "unscoped recursive delete"},
	{"mkfs", "filesystem format"},
	{"shred ", "secure wipe of files or devices"},

	// Raw device writes
	{"dd if=", "raw device copy"},
	{"of=/dev/", "write to raw device"},
	{"> /dev/sd", "redirect onto block device"},

	// Fork bombs
	{":(){", "fork bomb"},
	{":|:&", "fork bomb"},

	// Unauthenticated outbound fetch piped to a shell
	{"curl http://", "unauthenticated plain-HTTP download"},
	{"wget http://", "unauthenticated plain-HTTP download"},
	{"| sh", "piping downloaded content into a shell"},
	{"| bash", "piping downloaded content into a shell"},

	// Reverse shells and interactive escapes
	{"nc -e", "reverse shell"},
	{"nc -l", "listener shell"},
	{"/dev/tcp/", "bash network redirection (reverse shell)"},
	{"bash -i", "interactive shell escape"},
	{"sh -i", "interactive shell escape"},
	{"python -c 'import pty", "pty shell escape"},
}

// CheckCommand checks a command against the deny-list. It returns
// (false, reason) when the command matches a rule and must not run.
func CheckCommand(command string) (allowed bool, reason string) {
	lower := strings.ToLower(command)
	for _, rule := range denyRules {
		if strings.Contains(lower, strings.ToLower(rule.Pattern)) {
			return false, rule.Reason
		}
	}
	return true, ""
}

// BlockedMessage is the fixed result returned to the loop for a
// command the filter rejected. The word "blocked" is what callers
// and prompts key on.
func BlockedMessage(reason string) string {
	return fmt.Sprintf("Command blocked for safety: %s", reason)
}
