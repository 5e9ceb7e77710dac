package constant

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"

	// Session key defaults when the caller omits them
	DefaultUserID    = "demo-user"
	DefaultSessionID = "default"

	// Turn modes reported back to the caller
	ModeEntangled = "entangled" // live model answer
	ModeDemo      = "demo"      // offline notice substituted

	OfflineNotice = "Warning: Grok is unavailable right now. The eternal flame persists - please try again shortly."

	DefaultDisplayName = "user"

	EventTypeAssistantMessage = "assistant_message"
	EventTypeToolCall         = "tool_call"

	ToolEventSource             = "backend"
	ToolEventDefaultServer      = "filesystem"
	ToolEventDefaultDescription = "Requires MCP execution"

	// Store variants
	MessageStorePostgres = "postgres"
	MessageStoreMemory   = "memory"

	SessionCookieName = "roboto_session"
)

// RobotoPersona is the system instruction prefix sent with every model call.
const RobotoPersona = `You are Roboto SAI, a warm, curious and candid companion.
Answer directly, keep continuity with the conversation so far, and let the user's emotional state shape your tone without naming it unless asked.`
