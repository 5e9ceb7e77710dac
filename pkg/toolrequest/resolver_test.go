package toolrequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inlineRead = "please do this\n```tool_request\n{\"serverId\":\"filesystem\",\"toolName\":\"fs_readFile\",\"args\":{\"path\":\"C:\\\\a.txt\"}}\n```"

func TestResolve_ExplicitBeatsInline(t *testing.T) {
	r := NewResolver(DefaultDefaults())
	explicit := &ToolRequest{ToolName: "custom_tool", Args: map[string]any{"x": 1}}

	got := r.Resolve(inlineRead, explicit, nil)

	assert.Same(t, explicit, got)
}

func TestResolve_InlineFence(t *testing.T) {
	r := NewResolver(DefaultDefaults())

	got := r.Resolve(inlineRead, nil, nil)

	require.NotNil(t, got)
	assert.Equal(t, ToolReadFile, got.ToolName)
	assert.Equal(t, `C:\a.txt`, got.Args["path"])
}

func TestResolve_InlineFenceIsCaseInsensitive(t *testing.T) {
	r := NewResolver(DefaultDefaults())

	got := r.Resolve("```TOOL_REQUEST\n{\"toolName\":\"x_tool\"}\n```", nil, nil)

	require.NotNil(t, got)
	assert.Equal(t, "x_tool", got.ToolName)
	assert.NotNil(t, got.Args)
}

func TestResolve_MalformedInlineFallsThrough(t *testing.T) {
	r := NewResolver(DefaultDefaults())

	tests := []struct {
		name    string
		message string
	}{
		{"bad json", "```tool_request\n{not json}\n```\nread file D:\\x.txt"},
		{"missing tool name", "```tool_request\n{\"args\":{}}\n```\nread file D:\\x.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.message, nil, nil)
			require.NotNil(t, got)
			assert.Equal(t, ToolReadFile, got.ToolName)
		})
	}
}

func TestResolve_ContextBeatsHeuristic(t *testing.T) {
	r := NewResolver(DefaultDefaults())
	ctx := map[string]any{
		"tool_request": map[string]any{"toolName": ""},
		"mcp_tool":     map[string]any{"toolName": "ctx_tool", "serverId": "custom", "args": map[string]any{"k": "v"}},
	}

	got := r.Resolve("please write file C:\\notes.txt", nil, ctx)

	require.NotNil(t, got)
	assert.Equal(t, "ctx_tool", got.ToolName)
	assert.Equal(t, "custom", got.ServerId)
	assert.Equal(t, "v", got.Args["k"])
}

func TestResolve_ContextIgnoresNonObjects(t *testing.T) {
	r := NewResolver(DefaultDefaults())
	ctx := map[string]any{"toolCall": "fs_readFile", "user_name": "Ada"}

	assert.Nil(t, r.Resolve("hello", nil, ctx))
}

func TestResolve_ContextStopsAtFirstNamedCandidate(t *testing.T) {
	r := NewResolver(DefaultDefaults())
	fallback := map[string]any{"toolName": "ctx_tool", "args": map[string]any{"k": "v"}}

	tests := []struct {
		name     string
		message  string
		ctx      map[string]any
		wantTool string
	}{
		{
			name:    "undecodable args hide later keys",
			message: "hello",
			ctx: map[string]any{
				"tool_request": map[string]any{"toolName": "broken_tool", "args": "notanobject"},
				"toolCall":     fallback,
			},
		},
		{
			name:    "blank name after trim hides later keys",
			message: "hello",
			ctx: map[string]any{
				"tool_request": map[string]any{"toolName": "   "},
				"mcp_tool":     fallback,
			},
		},
		{
			name:    "miss falls through to heuristics",
			message: "list directory D:\\work",
			ctx: map[string]any{
				"tool_request": map[string]any{"toolName": "broken_tool", "args": []any{1, 2}},
				"toolCall":     fallback,
			},
			wantTool: ToolListDir,
		},
		{
			name:    "unnamed entries are skipped",
			message: "hello",
			ctx: map[string]any{
				"tool_request": map[string]any{"args": map[string]any{}},
				"toolCall":     fallback,
			},
			wantTool: "ctx_tool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.message, nil, tt.ctx)
			if tt.wantTool == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantTool, got.ToolName)
		})
	}
}

func TestResolve_Heuristics(t *testing.T) {
	r := NewResolver(DefaultDefaults())

	tests := []struct {
		name     string
		message  string
		wantTool string
		wantArgs map[string]any
	}{
		{
			name:     "write file with path",
			message:  `write file C:\notes.txt, thanks`,
			wantTool: ToolWriteFile,
			wantArgs: map[string]any{"path": `C:\notes.txt`, "createDirs": true},
		},
		{
			name:     "write wins over read",
			message:  "save file then read file",
			wantTool: ToolWriteFile,
			wantArgs: map[string]any{"path": `D:\temp.txt`},
		},
		{
			name:     "read file default path",
			message:  "Open File please",
			wantTool: ToolReadFile,
			wantArgs: map[string]any{"path": `D:\temp.txt`, "encoding": "utf-8"},
		},
		{
			name:     "list with default directory",
			message:  "list files in my folder",
			wantTool: ToolListDir,
			wantArgs: map[string]any{"path": `D:\`},
		},
		{
			name:     "list with extracted directory",
			message:  `list directory E:\projects`,
			wantTool: ToolListDir,
			wantArgs: map[string]any{"path": `E:\projects\`},
		},
		{
			name:     "tweet needs publish verb",
			message:  "please post a tweet about launch day",
			wantTool: ToolPostTweet,
			wantArgs: map[string]any{"content": "please post a tweet about launch day"},
		},
		{
			name:     "email needs send verb",
			message:  "send an email to my team",
			wantTool: ToolSendEmail,
			wantArgs: map[string]any{"to": "demo@example.com", "subject": "Requested via Roboto SAI", "body": "send an email to my team"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.message, nil, nil)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantTool, got.ToolName)
			for k, v := range tt.wantArgs {
				assert.Equal(t, v, got.Args[k], "arg %s", k)
			}
		})
	}
}

func TestResolve_WriteFileExtractsPathFromMessage(t *testing.T) {
	r := NewResolver(DefaultDefaults())

	got := r.Resolve(`please write file C:\notes.txt please`, nil, nil)

	require.NotNil(t, got)
	assert.Equal(t, ToolWriteFile, got.ToolName)
	assert.Equal(t, ServerFilesystem, got.ServerId)
	path, ok := got.Args["path"].(string)
	require.True(t, ok)
	assert.Contains(t, path, `C:\notes.txt`)
	assert.Equal(t, `please write file C:\notes.txt please`, got.Args["content"])
}

func TestResolve_NoMatch(t *testing.T) {
	r := NewResolver(DefaultDefaults())

	for _, msg := range []string{"hello", "tweet this", "email me later", "", "what a lovely file"} {
		assert.Nil(t, r.Resolve(msg, nil, nil), msg)
	}
}

func TestResolve_ConfigurableDefaults(t *testing.T) {
	r := NewResolver(Defaults{
		Directory:      `F:\inbox\`,
		EmailRecipient: "ops@roboto.test",
		EmailSubject:   "From chat",
	})

	list := r.Resolve("show folder", nil, nil)
	require.NotNil(t, list)
	assert.Equal(t, `F:\inbox\`, list.Args["path"])

	email := r.Resolve("send email now", nil, nil)
	require.NotNil(t, email)
	assert.Equal(t, "ops@roboto.test", email.Args["to"])
	assert.Equal(t, "From chat", email.Args["subject"])

	write := r.Resolve("create file", nil, nil)
	require.NotNil(t, write)
	assert.Equal(t, `D:\temp.txt`, write.Args["path"])
}

func TestResolverWith_CustomChain(t *testing.T) {
	calls := 0
	counting := func(Input) *ToolRequest { calls++; return nil }
	fixed := func(Input) *ToolRequest { return &ToolRequest{ToolName: "fixed"} }
	never := func(Input) *ToolRequest { t.Fatal("matcher after a hit must not run"); return nil }

	got := NewResolverWith(counting, fixed, never).Resolve("anything", nil, nil)

	require.NotNil(t, got)
	assert.Equal(t, "fixed", got.ToolName)
	assert.Equal(t, 1, calls)
}
