package toolrequest

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	inlineFencePattern = regexp.MustCompile("(?i)```tool_request\\s*\\n([\\s\\S]+?)\\n```")
	drivePathPattern   = regexp.MustCompile(`[A-Za-z]:\\[^,;\n]+`)
)

// contextKeys are checked in this order.
var contextKeys = []string{"tool_request", "toolCall", "mcp_tool", "mcp_tool_call"}

// MatchExplicit passes a caller-supplied request through unchanged.
func MatchExplicit(in Input) *ToolRequest {
	return in.Explicit
}

// MatchInlineFence reads a ```tool_request fenced JSON object out of the
// message. Malformed JSON is a miss.
func MatchInlineFence(in Input) *ToolRequest {
	m := inlineFencePattern.FindStringSubmatch(in.Message)
	if m == nil {
		return nil
	}
	payload := strings.TrimSpace(m[1])
	if payload == "" {
		return nil
	}
	var req ToolRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil
	}
	return normalize(&req)
}

// MatchContext looks for a request object under one of the well-known
// context keys. Only the first object carrying a toolName is considered; if
// it does not decode, the context is a miss.
func MatchContext(in Input) *ToolRequest {
	if len(in.Context) == 0 {
		return nil
	}
	for _, key := range contextKeys {
		candidate, ok := in.Context[key].(map[string]any)
		if !ok {
			continue
		}
		if name, _ := candidate["toolName"].(string); name == "" {
			continue
		}
		return decodeCandidate(candidate)
	}
	return nil
}

func decodeCandidate(candidate map[string]any) *ToolRequest {
	raw, err := json.Marshal(candidate)
	if err != nil {
		return nil
	}
	var req ToolRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil
	}
	return normalize(&req)
}

type heuristicRule struct {
	matches func(normalized string) bool
	build   func(message string, d Defaults) *ToolRequest
}

// MatchHeuristic guesses a request from keywords in the message. Rules are
// tried in order and the first one that fires wins.
func MatchHeuristic(defaults Defaults) Matcher {
	d := defaults.withFallbacks()
	rules := []heuristicRule{
		{containsAny("write file", "save file", "create file"), buildWriteFile},
		{containsAny("read file", "open file", "show file"), buildReadFile},
		{containsAny("list directory", "list files", "show folder"), buildListDir},
		{containsAll(containsAny("tweet"), containsAny("post", "publish")), buildTweet},
		{containsAll(containsAny("email"), containsAny("send")), buildEmail},
	}

	return func(in Input) *ToolRequest {
		normalized := strings.ToLower(in.Message)
		for _, rule := range rules {
			if rule.matches(normalized) {
				return rule.build(in.Message, d)
			}
		}
		return nil
	}
}

func buildWriteFile(message string, d Defaults) *ToolRequest {
	return &ToolRequest{
		ServerId:    ServerFilesystem,
		ToolName:    ToolWriteFile,
		Description: "Write a file using MCP",
		Args: map[string]any{
			"path":       extractPath(message, d.FilePath),
			"content":    message,
			"createDirs": true,
		},
	}
}

func buildReadFile(message string, d Defaults) *ToolRequest {
	return &ToolRequest{
		ServerId:    ServerFilesystem,
		ToolName:    ToolReadFile,
		Description: "Read a file via MCP",
		Args: map[string]any{
			"path":     extractPath(message, d.FilePath),
			"encoding": "utf-8",
		},
	}
}

func buildListDir(message string, d Defaults) *ToolRequest {
	dir := extractPath(message, d.Directory)
	if !strings.HasSuffix(dir, `\`) {
		dir += `\`
	}
	return &ToolRequest{
		ServerId:    ServerFilesystem,
		ToolName:    ToolListDir,
		Description: "List directory contents",
		Args: map[string]any{
			"path": dir,
		},
	}
}

func buildTweet(message string, _ Defaults) *ToolRequest {
	return &ToolRequest{
		ServerId:    ServerTwitter,
		ToolName:    ToolPostTweet,
		Description: "Post to Twitter via MCP",
		Args: map[string]any{
			"content": message,
		},
	}
}

func buildEmail(message string, d Defaults) *ToolRequest {
	return &ToolRequest{
		ServerId:    ServerEmail,
		ToolName:    ToolSendEmail,
		Description: "Send email via MCP",
		Args: map[string]any{
			"to":      d.EmailRecipient,
			"subject": d.EmailSubject,
			"body":    message,
		},
	}
}

// extractPath returns the first drive-letter path in message, trimmed, or
// fallback when there is none.
func extractPath(message, fallback string) string {
	if p := strings.TrimSpace(drivePathPattern.FindString(message)); p != "" {
		return p
	}
	return fallback
}

func normalize(req *ToolRequest) *ToolRequest {
	req.ToolName = strings.TrimSpace(req.ToolName)
	if req.ToolName == "" {
		return nil
	}
	if req.Args == nil {
		req.Args = map[string]any{}
	}
	return req
}

func containsAny(phrases ...string) func(string) bool {
	return func(s string) bool {
		for _, p := range phrases {
			if strings.Contains(s, p) {
				return true
			}
		}
		return false
	}
}

func containsAll(preds ...func(string) bool) func(string) bool {
	return func(s string) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}
