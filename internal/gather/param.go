package gather

import (
	"fmt"

	"github.com/liquidgo/liquidgo/internal/rsort"
)

// ParamKind classifies how a finished, gathered parameter was declared
// (spec.md §4.1). It survives gathering and is consumed by lowering to
// decide e.g. which parameters may be implicitly instantiated at a call.
type ParamKind int

const (
	KindExplicit ParamKind = iota
	KindAt
	KindPound
	KindColon
)

func (k ParamKind) String() string {
	switch k {
	case KindExplicit:
		return "explicit"
	case KindAt:
		return "at"
	case KindPound:
		return "pound"
	case KindColon:
		return "colon"
	default:
		return "?"
	}
}

// rawKind discriminates an in-progress Param during gathering, before
// unused `x: T` / SyntaxError bindings are filtered out by
// intoDesugarEnv. Mirrors gather.rs's `enum Param`.
type rawKind int

const (
	rawExplicit rawKind = iota
	rawAt
	rawPound
	rawColon
	// rawSyntaxError marks a binder known, purely syntactically, to not
	// be usable as a refinement index (spec.md §4.1's `x: {v. i32[v] |
	// v > 0}` example) — reported as an error only if actually used.
	rawSyntaxError
)

// rawParam is the gathering-time parameter payload stored in Env.
type rawParam struct {
	kind rawKind
	sort rsort.Sort // only meaningful when kind == rawExplicit
}

func explicitParam(sort rsort.Sort) rawParam { return rawParam{kind: rawExplicit, sort: sort} }

func fromBindKind(pound bool) rawParam {
	if pound {
		return rawParam{kind: rawPound}
	}
	return rawParam{kind: rawAt}
}

// Param is a finished, name-resolved refinement parameter (spec.md
// §4.1's output of gathering — fhir::Param in original_source). Name is
// a fresh internal identifier, not the surface name: the same surface
// name can be declared in nested scopes, and downstream passes need one
// identifier per declaration regardless. OrigName is kept for
// diagnostics.
type Param struct {
	Name     string
	OrigName string
	Sort     rsort.Sort
	Kind     ParamKind
}

// intoDesugarEnv is the final step of gathering (gather.rs's
// `Env::into_desugar_env`): it walks every binding ever declared and
// drops unused `x: T` params and every SyntaxError param, reporting the
// rest with a concrete sort (Wildcard for At/Pound/unused-checked Colon
// params, which get their real sort only during lowering/inference) and
// a freshly minted name.
func intoDesugarEnv(env *Env[rawParam]) []Param {
	next := 0
	fresh := func() string {
		n := fmt.Sprintf("a%d", next)
		next++
		return n
	}
	return FilterMap(env, func(name string, p rawParam, used bool) (Param, bool) {
		switch p.kind {
		case rawExplicit:
			return Param{Name: fresh(), OrigName: name, Sort: p.sort, Kind: KindExplicit}, true
		case rawAt:
			return Param{Name: fresh(), OrigName: name, Sort: rsort.Wildcard, Kind: KindAt}, true
		case rawPound:
			return Param{Name: fresh(), OrigName: name, Sort: rsort.Wildcard, Kind: KindPound}, true
		case rawColon:
			if !used {
				return Param{}, false
			}
			return Param{Name: fresh(), OrigName: name, Sort: rsort.Wildcard, Kind: KindColon}, true
		case rawSyntaxError:
			return Param{}, false
		default:
			return Param{}, false
		}
	})
}
