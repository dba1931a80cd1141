package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decision values returned by the scheduling policy.
const (
	DecisionSchedule = "schedule"
	DecisionHold     = "hold"
	DecisionBlock    = "block"
)

// Input describes one drafted reply to the policy.
type Input struct {
	Kind        string `json:"kind"`
	Rating      int    `json:"rating"`
	ModeSetting string `json:"mode_setting"`
	Tone        string `json:"tone,omitempty"`
}

// Engine is the OPA policy engine deciding which drafted replies may be
// auto-scheduled.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.reply_policy.decision"),
		rego.Module("reply_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate returns schedule, hold, or block for one drafted reply.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The default policy always defines a decision. An empty result
		// means a custom policy forgot the default rule; hold is the safe
		// answer.
		return DecisionHold, nil
	}

	val := results[0].Expressions[0].Value
	if s, ok := val.(string); ok {
		return s, nil
	}

	return DecisionHold, nil
}

// DefaultPolicy is the default scheduling policy: questions and 2..5 star
// reviews follow the seller's auto setting, 1-star reviews never
// auto-publish.
const DefaultPolicy = `
package reply_policy

import rego.v1

default decision := "hold"

decision := "block" if {
	input.kind == "review"
	input.rating == 1
}

decision := "schedule" if {
	input.kind == "review"
	input.mode_setting == "auto"
	input.rating >= 2
}

decision := "schedule" if {
	input.kind == "question"
	input.mode_setting == "auto"
}
`
