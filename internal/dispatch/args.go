package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

// MemoryPrefix introduces a memory command typed into the shell tool.
const MemoryPrefix = "memory "

// Memory actions.
const (
	ActionList   = "list"
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// MemoryArgs is the validated argument record of a memory command.
type MemoryArgs struct {
	Action string
	Rule   string
	RuleID *int
}

// ParseMemoryArgs tokenizes a command line such as
//
//	action=add rule="Use tabs"
//
// into MemoryArgs. Tokens are separated by spaces outside quotes; single
// and double quotes group and are stripped. Tokens without '=' and
// unknown keys are ignored. A leading "memory " prefix is allowed.
func ParseMemoryArgs(line string) (MemoryArgs, error) {
	line = strings.TrimPrefix(strings.TrimSpace(line), MemoryPrefix)

	fields := map[string]string{}
	for _, tok := range tokenize(line) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || key == "" {
			continue
		}
		fields[key] = value
	}
	return memoryArgsFromFields(fields)
}

// MemoryArgsFromMap builds MemoryArgs from structured tool arguments, as
// sent by the host for a direct memory tool call.
func MemoryArgsFromMap(m map[string]any) (MemoryArgs, error) {
	fields := map[string]string{}
	for _, key := range []string{"action", "rule", "ruleId"} {
		switch v := m[key].(type) {
		case string:
			fields[key] = v
		case float64:
			fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			fields[key] = strconv.Itoa(v)
		}
	}
	return memoryArgsFromFields(fields)
}

func memoryArgsFromFields(fields map[string]string) (MemoryArgs, error) {
	args := MemoryArgs{
		Action: strings.ToLower(strings.TrimSpace(fields["action"])),
		Rule:   strings.TrimSpace(fields["rule"]),
	}
	if raw, ok := fields["ruleId"]; ok && strings.TrimSpace(raw) != "" {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return MemoryArgs{}, fmt.Errorf("%w: ruleId %q is not an integer", ErrInvalidArgument, raw)
		}
		args.RuleID = &id
	}
	return args, nil
}

// tokenize splits on unquoted spaces and strips the quotes.
func tokenize(s string) []string {
	var (
		tokens []string
		cur    strings.Builder
		quote  rune
		inTok  bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inTok = true
		case r == ' ' || r == '\t':
			if inTok {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inTok = false
			}
		default:
			cur.WriteRune(r)
			inTok = true
		}
	}
	if inTok {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
