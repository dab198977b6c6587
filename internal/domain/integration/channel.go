package integration

// Channel identifies an external integration target
type Channel string

const (
	// ChannelN8N is the n8n workflow automation service
	ChannelN8N Channel = "n8n"
	// ChannelNotion is the Notion API
	ChannelNotion Channel = "notion"
)

// AllChannels returns every known channel in display order
func AllChannels() []Channel {
	return []Channel{ChannelN8N, ChannelNotion}
}

// IsValid returns true if the channel is known
func (c Channel) IsValid() bool {
	switch c {
	case ChannelN8N, ChannelNotion:
		return true
	default:
		return false
	}
}

// String returns the string representation of Channel
func (c Channel) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the channel
func (c Channel) DisplayName() string {
	switch c {
	case ChannelN8N:
		return "n8n"
	case ChannelNotion:
		return "Notion"
	default:
		return string(c)
	}
}

// Action is a dispatch operation. Each action has its own in-flight state.
type Action string

const (
	ActionSetupWorkflow        Action = "setup_workflow"
	ActionSendData             Action = "send_data"
	ActionSendNotification     Action = "send_notification"
	ActionUploadToNotion       Action = "upload_to_notion"
	ActionCreateNotionDatabase Action = "create_notion_database"
)

// AllActions returns every tracked action
func AllActions() []Action {
	return []Action{
		ActionSetupWorkflow,
		ActionSendData,
		ActionSendNotification,
		ActionUploadToNotion,
		ActionCreateNotionDatabase,
	}
}

// Channel returns the channel the action reports its status on
func (a Action) Channel() Channel {
	switch a {
	case ActionUploadToNotion, ActionCreateNotionDatabase:
		return ChannelNotion
	default:
		return ChannelN8N
	}
}

// IsValid returns true if the action is known
func (a Action) IsValid() bool {
	for _, known := range AllActions() {
		if a == known {
			return true
		}
	}
	return false
}

// String returns the string representation of Action
func (a Action) String() string {
	return string(a)
}
