package promptfn

import (
	"context"
	"strings"
)

// Family is the request shape a model accepts.
type Family string

const (
	// FamilyChat models take role-tagged messages and are instructed to wrap their answer.
	FamilyChat Family = "chat"
	// FamilyLegacy models continue raw text and are primed with the opening JSON tokens.
	FamilyLegacy Family = "legacy"
)

var legacyModelNames = []string{"ada", "babbage", "curie", "davinci", "cushman"}

// FamilyOf classifies a model by name: ada, babbage, curie, davinci and cushman models
// are legacy completion models, everything else is chat.
func FamilyOf(model string) Family {
	m := strings.ToLower(model)
	for _, name := range legacyModelNames {
		if strings.Contains(m, name) {
			return FamilyLegacy
		}
	}
	return FamilyChat
}

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is what the engine hands a Provider. Legacy requests use Prompt and Suffix;
// chat requests use Messages.
type Request struct {
	Family      Family
	Model       string
	Prompt      string
	Suffix      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Completion is the raw text a provider returned.
type Completion struct {
	Text         string
	FinishReason string
}

// Provider is a completion endpoint. It knows nothing about contracts or schemas.
// Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc struct {
	ProviderName string
	Fn           func(ctx context.Context, req Request) (*Completion, error)
}

func (f ProviderFunc) Name() string { return f.ProviderName }

func (f ProviderFunc) Complete(ctx context.Context, req Request) (*Completion, error) {
	return f.Fn(ctx, req)
}

var _ Provider = ProviderFunc{}
