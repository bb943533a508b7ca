package filter

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/hearthwatch/sdk/entity"
)

// exemptDomains are never reported as unknown references, regardless of
// user configuration.
var exemptDomains = map[string]struct{}{
	"device_tracker":          {},
	"group":                   {},
	"persistent_notification": {},
	"scene":                   {},
}

// Exempt reports whether the entity belongs to a domain that diagnostics
// always skip.
func Exempt(id entity.ID) bool {
	_, ok := exemptDomains[id.Domain()]
	return ok
}

// ExemptDomains returns the domains that diagnostics always skip.
func ExemptDomains() []string {
	return []string{"device_tracker", "group", "persistent_notification", "scene"}
}

// Ignore bundles the built-in domain exemptions with compiled user rules.
// A nil *Ignore is valid and applies only the exemptions.
type Ignore struct {
	exprs    []string
	programs []cel.Program
}

// Compile builds an Ignore from CEL expressions. Blank expressions are
// skipped. Compilation fails if any expression has a syntax error or does
// not evaluate to a boolean.
func Compile(exprs []string) (*Ignore, error) {
	env, err := cel.NewEnv(
		cel.Variable("entity_id", cel.StringType),
		cel.Variable("domain", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter environment: %w", err)
	}

	ignore := &Ignore{
		exprs:    make([]string, 0, len(exprs)),
		programs: make([]cel.Program, 0, len(exprs)),
	}

	for _, expr := range exprs {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}

		ast, iss := env.Compile(expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("failed to compile filter %q: %w", expr, iss.Err())
		}

		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("filter %q must evaluate to a boolean, got %s", expr, ast.OutputType())
		}

		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to build filter program %q: %w", expr, err)
		}

		ignore.exprs = append(ignore.exprs, expr)
		ignore.programs = append(ignore.programs, prg)
	}

	return ignore, nil
}

// Ignored reports whether diagnostics should skip the entity. Exempt
// domains are always ignored; otherwise the entity is ignored when any
// rule evaluates to true. A rule that errors during evaluation counts as
// not matching.
func (i *Ignore) Ignored(id entity.ID) bool {
	if Exempt(id) {
		return true
	}
	if i == nil {
		return false
	}

	vars := map[string]any{
		"entity_id": string(id),
		"domain":    id.Domain(),
	}

	for _, prg := range i.programs {
		out, _, err := prg.Eval(vars)
		if err != nil {
			// A broken rule never hides a reference
			continue
		}
		if matched, ok := out.Value().(bool); ok && matched {
			return true
		}
	}

	return false
}

// Exprs returns the source expressions of the compiled rules.
func (i *Ignore) Exprs() []string {
	if i == nil {
		return nil
	}
	exprs := make([]string, len(i.exprs))
	copy(exprs, i.exprs)
	return exprs
}
