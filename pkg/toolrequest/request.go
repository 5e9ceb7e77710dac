package toolrequest

// ToolRequest is an advisory action proposal for a downstream tool
// executor. The chat pipeline never executes it.
type ToolRequest struct {
	ServerId    string         `json:"serverId,omitempty"`
	ToolName    string         `json:"toolName" validate:"required"`
	Description string         `json:"description,omitempty"`
	Args        map[string]any `json:"args"`
}

const (
	ServerFilesystem = "filesystem"
	ServerTwitter    = "twitter"
	ServerEmail      = "email"

	ToolWriteFile = "fs_writeFile"
	ToolReadFile  = "fs_readFile"
	ToolListDir   = "fs_listDir"
	ToolPostTweet = "twitter_postTweet"
	ToolSendEmail = "email_sendEmail"
)

// Defaults are the arguments filled in when a heuristic match cannot pull
// them out of the message.
type Defaults struct {
	FilePath       string
	Directory      string
	EmailRecipient string
	EmailSubject   string
}

func DefaultDefaults() Defaults {
	return Defaults{
		FilePath:       `D:\temp.txt`,
		Directory:      `D:\`,
		EmailRecipient: "demo@example.com",
		EmailSubject:   "Requested via Roboto SAI",
	}
}

func (d Defaults) withFallbacks() Defaults {
	base := DefaultDefaults()
	if d.FilePath == "" {
		d.FilePath = base.FilePath
	}
	if d.Directory == "" {
		d.Directory = base.Directory
	}
	if d.EmailRecipient == "" {
		d.EmailRecipient = base.EmailRecipient
	}
	if d.EmailSubject == "" {
		d.EmailSubject = base.EmailSubject
	}
	return d
}
