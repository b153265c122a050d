// Package extract parses model-generated text into typed action requests
// using the fenced-block convention: ```bash/sh/shell blocks are shell
// commands, ```tool (or ```function) blocks carry a JSON tool call, and any
// other fence is a bare code block.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	shellBlockRe = regexp.MustCompile("```(?:bash|shell|sh)\n([\\s\\S]*?)```")
	toolBlockRe  = regexp.MustCompile("```(?:tool|function)\n([\\s\\S]*?)```")
	codeBlockRe  = regexp.MustCompile("```(\\w*)\n([\\s\\S]*?)```")
)

// Kind classifies an extracted action.
type Kind int

const (
	KindShell Kind = iota
	KindTool
	KindCode
)

// Action is one extracted block. Exactly one of Command, Call, or Code is
// meaningful, selected by Kind.
type Action struct {
	Kind    Kind
	Command string
	Call    ToolCall
	Code    CodeBlock
}

// ToolCall is a parsed ```tool block.
type ToolCall struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

// CodeBlock is a fenced block that is neither a shell command nor a tool
// call. Language defaults to "txt" when the fence tag is empty.
type CodeBlock struct {
	Language string
	Content  string
}

// Fence tags consumed by the shell and tool extractors. Blocks with these
// tags are never reported as bare code blocks.
var consumedTags = map[string]bool{
	"bash":     true,
	"shell":    true,
	"sh":       true,
	"tool":     true,
	"function": true,
}

var shellTags = map[string]bool{
	"bash":  true,
	"shell": true,
	"sh":    true,
}

var toolTags = map[string]bool{
	"tool":     true,
	"function": true,
}

// Actions returns every fenced block as a classified action, in document
// order. Malformed tool blocks are dropped, not surfaced as code.
func Actions(text string) []Action {
	var actions []Action
	for _, m := range codeBlockRe.FindAllStringSubmatch(text, -1) {
		tag := strings.ToLower(strings.TrimSpace(m[1]))
		body := strings.TrimSpace(m[2])

		switch {
		case shellTags[tag]:
			actions = append(actions, Action{Kind: KindShell, Command: body})
		case toolTags[tag]:
			call, ok := parseToolCall(body)
			if !ok {
				continue
			}
			actions = append(actions, Action{Kind: KindTool, Call: call})
		default:
			lang := strings.TrimSpace(m[1])
			if lang == "" {
				lang = "txt"
			}
			actions = append(actions, Action{Kind: KindCode, Code: CodeBlock{Language: lang, Content: body}})
		}
	}
	return actions
}

func parseToolCall(block string) (ToolCall, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return ToolCall{}, false
	}
	if _, ok := raw["tool"]; !ok {
		return ToolCall{}, false
	}
	if _, ok := raw["params"]; !ok {
		return ToolCall{}, false
	}
	var call ToolCall
	if err := json.Unmarshal([]byte(block), &call); err != nil {
		return ToolCall{}, false
	}
	return call, true
}

// Commands returns the contents of all bash/shell/sh fenced blocks in
// document order, whitespace-trimmed.
func Commands(text string) []string {
	var commands []string
	for _, m := range shellBlockRe.FindAllStringSubmatch(text, -1) {
		commands = append(commands, strings.TrimSpace(m[1]))
	}
	return commands
}

// ToolCalls returns all well-formed tool calls in document order. A tool
// block must hold a JSON object with "tool" and "params" keys; malformed
// blocks are silently skipped.
func ToolCalls(text string) []ToolCall {
	var calls []ToolCall
	for _, m := range toolBlockRe.FindAllStringSubmatch(text, -1) {
		call, ok := parseToolCall(strings.TrimSpace(m[1]))
		if !ok {
			continue
		}
		calls = append(calls, call)
	}
	return calls
}

// FencedBlocks returns every fenced block in document order, including the
// bash and tool blocks the other extractors consume. Used where the caller
// wants the raw fences, like re-running a block from the last response.
func FencedBlocks(text string) []CodeBlock {
	var blocks []CodeBlock
	for _, m := range codeBlockRe.FindAllStringSubmatch(text, -1) {
		lang := strings.TrimSpace(m[1])
		if lang == "" {
			lang = "txt"
		}
		blocks = append(blocks, CodeBlock{
			Language: lang,
			Content:  strings.TrimSpace(m[2]),
		})
	}
	return blocks
}

// CodeBlocks returns all fenced blocks whose tag is not consumed by the
// shell or tool extractors, in document order.
func CodeBlocks(text string) []CodeBlock {
	var blocks []CodeBlock
	for _, m := range codeBlockRe.FindAllStringSubmatch(text, -1) {
		lang := strings.TrimSpace(m[1])
		if consumedTags[strings.ToLower(lang)] {
			continue
		}
		if lang == "" {
			lang = "txt"
		}
		blocks = append(blocks, CodeBlock{
			Language: lang,
			Content:  strings.TrimSpace(m[2]),
		})
	}
	return blocks
}
