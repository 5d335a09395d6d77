package promptfn

import (
	"fmt"
	"strings"

	"github.com/skosovsky/promptfn/template"
)

const nonNullInstruction = "The answer must never be null or undefined."

// buildPrompt lays out the user prompt for c: doc comment, signature, a JSON input
// block with a placeholder for every declared parameter present in params, and the
// answer instructions. It returns the template and the parameters it references;
// undeclared entries of params are dropped.
func buildPrompt(c *Contract, params map[string]any) (template.Prompt, map[string]any) {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(c.doc))
	b.WriteString("\n\nfunction ")
	b.WriteString(c.Signature())
	b.WriteString("\n")

	used := make(map[string]any, len(c.params))
	var present []string
	for _, p := range c.params {
		if v, ok := params[p.Name]; ok {
			used[p.Name] = v
			present = append(present, p.Name)
		}
	}
	if len(present) > 0 {
		b.WriteString("\nInput:\n{\n")
		for i, name := range present {
			fmt.Fprintf(&b, "  %q: {{%s}}", name, name)
			if i < len(present)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString("}\n")
	}
	if !c.CanBeNull() {
		b.WriteString("\n")
		b.WriteString(nonNullInstruction)
		b.WriteString("\n")
	}
	b.WriteString("\nReturn value of type ")
	b.WriteString(c.hint)
	b.WriteString(" as JSON:\n")
	return template.Prompt{
		Text:           b.String(),
		TrimPrompt:     template.TrimStart,
		TrimCompletion: template.TrimBoth,
	}, used
}

// chatInstruction is the system message for chat models, which are told to wrap the
// answer instead of being primed.
func chatInstruction(c *Contract, reasoning bool) string {
	var b strings.Builder
	b.WriteString("You are the implementation of the function described by the user. ")
	if reasoning {
		b.WriteString("First reason about the task step by step in plain text. Then write")
	} else {
		b.WriteString("Write")
	}
	b.WriteString(" the return value as JSON in a single ```json fenced code block.")
	if c.kind.Wrapped() {
		fmt.Fprintf(&b, ` Wrap the value in an object: {"value": <%s>}.`, c.hint)
	} else {
		fmt.Fprintf(&b, " The value must have the type %s.", c.hint)
	}
	return b.String()
}

// buildRequest shapes the rendered prompt for the model family: legacy models get the
// priming prefix appended and the fill-in suffix forwarded; chat models get a system
// instruction and the whole text as one user message.
func buildRequest(c *Contract, r resolved, res template.Result, reasoning bool) Request {
	req := Request{
		Family:      r.Family,
		Model:       r.Model,
		MaxTokens:   r.MaxTokens,
		Temperature: r.Temperature,
	}
	if r.Family == FamilyLegacy {
		req.Prompt = res.Prompt + c.prefix
		if res.HasSuffix {
			req.Suffix = res.Suffix
		}
		return req
	}
	req.Messages = []Message{
		{Role: RoleSystem, Content: chatInstruction(c, reasoning)},
		{Role: RoleUser, Content: res.Prompt + res.Suffix},
	}
	return req
}
