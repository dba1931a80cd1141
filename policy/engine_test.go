package policy

import (
	"context"
	"testing"
)

func TestDefaultPolicyDecisions(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	cases := []struct {
		name  string
		input Input
		want  string
	}{
		{"auto 5-star review schedules", Input{Kind: "review", Rating: 5, ModeSetting: "auto"}, DecisionSchedule},
		{"auto 2-star review schedules", Input{Kind: "review", Rating: 2, ModeSetting: "auto"}, DecisionSchedule},
		{"1-star review blocks even on auto", Input{Kind: "review", Rating: 1, ModeSetting: "auto"}, DecisionBlock},
		{"manual review holds", Input{Kind: "review", Rating: 5, ModeSetting: "manual"}, DecisionHold},
		{"auto question schedules", Input{Kind: "question", ModeSetting: "auto"}, DecisionSchedule},
		{"manual question holds", Input{Kind: "question", ModeSetting: "manual"}, DecisionHold},
		{"unknown kind holds", Input{Kind: "comment", ModeSetting: "auto"}, DecisionHold},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := engine.Evaluate(ctx, tc.input)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCustomPolicyWithoutDefaultHolds(t *testing.T) {
	ctx := context.Background()
	// A policy that only defines schedule leaves non-matching inputs
	// undefined; the engine treats that as hold.
	engine, err := NewEngine(ctx, `
package reply_policy

import rego.v1

decision := "schedule" if {
	input.kind == "question"
}
`)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	got, err := engine.Evaluate(ctx, Input{Kind: "review", Rating: 5})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got != DecisionHold {
		t.Fatalf("expected hold for undefined decision, got %s", got)
	}
}

func TestNewEngineRejectsInvalidPolicy(t *testing.T) {
	if _, err := NewEngine(context.Background(), "not rego"); err == nil {
		t.Fatalf("expected error for invalid policy")
	}
}
