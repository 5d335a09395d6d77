// Package promptfn runs functions whose bodies are LLM completions.
//
// # Overview
//
// A function is declared by name, a /** ... */ doc comment, typed parameters and a
// return Type Expression. The Engine turns the declaration into a prompt, sends it to a
// Provider, heals the model's JSON-ish answer and checks it against the JSON Schema of
// the return type. A value that cannot be decoded or does not match comes back as nil.
//
// Pipeline: Contract → prompt template → Provider (retry, timeout, middlewares) →
// heal.Decode → schema validation → value.
//
// # Key concepts
//
//   - One type, three views: the typeexpr package renders a return type as JSON Schema
//     (for validation), as hint text (for the prompt) and as a canonical kind (for the
//     priming prefix and the scalar wrapping).
//   - Model families: chat models get a system instruction and fenced JSON; legacy
//     completion models get a primed prompt that they continue.
//   - Service parameters: @model, @temperature and @maxTokens tags in the doc comment
//     override the family defaults from Config.
//   - Reporting: with a project key each call posts a begin and a finish Prompt Event
//     in the background; failures are only logged.
//
// # Example
//
//	type Review struct {
//	    Sentiment string   `json:"sentiment" jsonschema:"enum=positive,enum=negative"`
//	    Topics    []string `json:"topics"`
//	}
//	e, err := promptfn.New(promptfn.DefaultConfig(), promptfn.WithProvider(p))
//	if err != nil { ... }
//	review, err := promptfn.NewFunc[Review](e, "review", "/** Analyse the review. */",
//	    []promptfn.Param{promptfn.ParamOf[string]("text")}, promptfn.ServiceParameters{})
//	if err != nil { ... }
//	r, ok, err := review.Call(ctx, map[string]any{"text": "Great battery, awful screen"})
package promptfn
