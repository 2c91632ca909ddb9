package expression

import (
	"fmt"

	"github.com/roach88/lift/internal/ir"
)

// EnvError reports a reference to a binding that is not in scope.
type EnvError struct {
	Binding string
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("binding %q is not in scope", e.Binding)
}

// Env maps binding names to computed values. It is immutable: Bind returns
// a new Env, so an inner Let cannot leak bindings to its siblings. Lookups
// resolve innermost-first, which makes re-binding a name shadow the outer
// value.
type Env struct {
	parent *Env
	name   string
	value  ir.IRValue
}

// EmptyEnv returns an environment with no bindings.
func EmptyEnv() *Env {
	return nil
}

// Bind returns a child environment with name bound to value.
func (e *Env) Bind(name string, value ir.IRValue) *Env {
	return &Env{parent: e, name: name, value: value}
}

// Lookup returns the innermost value bound to name.
func (e *Env) Lookup(name string) (ir.IRValue, error) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.value, nil
		}
	}
	return nil, &EnvError{Binding: name}
}

// Has reports whether name is bound.
func (e *Env) Has(name string) bool {
	_, err := e.Lookup(name)
	return err == nil
}

// Names returns the bound names, innermost first, each once.
func (e *Env) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for cur := e; cur != nil; cur = cur.parent {
		if !seen[cur.name] {
			seen[cur.name] = true
			out = append(out, cur.name)
		}
	}
	return out
}

// CheckScope verifies that every Get and every transformer parent in e
// refers to a binding in scope at that point, starting from env.
//
// Bindings of one Let are visible to the bindings after them and to Inner;
// a binding's own expression sees only what was bound before it.
func CheckScope(e Expression, env *Env) error {
	switch v := e.(type) {
	case nil:
		return nil
	case Let:
		scope := env
		for _, b := range v.Bindings {
			if err := CheckScope(b.Expr, scope); err != nil {
				return fmt.Errorf("binding %s: %w", b.Name, err)
			}
			scope = scope.Bind(b.Name, ir.IRNull{})
		}
		return CheckScope(v.Inner, scope)
	case Data:
		return nil
	case Invoke:
		if tq, ok := v.Fn.(TransformQuery); ok {
			for _, t := range tq.Transformers {
				if !env.Has(t.ParentBinding) {
					return &EnvError{Binding: t.ParentBinding}
				}
			}
		}
		return nil
	case Sequence:
		for _, sub := range v.Exprs {
			if err := CheckScope(sub, env); err != nil {
				return err
			}
		}
		return nil
	case Get:
		if !env.Has(v.Binding) {
			return &EnvError{Binding: v.Binding}
		}
		return nil
	default:
		return fmt.Errorf("unknown expression type %T", e)
	}
}
