package extract

// Role represents the role of a message sender in a conversation.
type Role string

const (
	// RoleSystem represents system-level instructions or context.
	RoleSystem Role = "system"

	// RoleUser represents messages from the user.
	RoleUser Role = "user"

	// RoleAssistant represents earlier generator output replayed to it.
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// Mode selects how much inference the generator is asked to do.
type Mode int

const (
	// ModeStandard is for prompts that spell out the expected fields.
	ModeStandard Mode = iota
	// ModeExtendedReasoning asks the generator to infer a structure from
	// context when the prompt does not define one.
	ModeExtendedReasoning
)

func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeExtendedReasoning:
		return "extended_reasoning"
	}
	return "unknown"
}
