package explain

import (
	"strings"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

type patternRule struct {
	label    string
	kinds    []symbols.Kind
	suffixes []string
	when     func(s symbols.Symbol) bool
}

func (r patternRule) matches(s symbols.Symbol) bool {
	if len(r.kinds) > 0 && !kindIn(s.Kind, r.kinds) {
		return false
	}
	if len(r.suffixes) > 0 {
		hit := false
		for _, sfx := range r.suffixes {
			if strings.HasSuffix(s.Name, sfx) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return r.when == nil || r.when(s)
}

var typeKinds = []symbols.Kind{symbols.KindTypeRecord, symbols.KindSumType}

var patternRules = []patternRule{
	{label: "Builder", kinds: typeKinds, suffixes: []string{"Builder"}},
	{label: "Builder", kinds: callable, when: func(s symbols.Symbol) bool { return s.Name == "builder" }},
	{label: "Factory", kinds: typeKinds, suffixes: []string{"Factory"}},
	{label: "Factory", kinds: callable, when: func(s symbols.Symbol) bool {
		return strings.HasPrefix(s.Name, "create_") || strings.HasPrefix(s.Name, "make_")
	}},
	{label: "Registry", kinds: typeKinds, suffixes: []string{"Registry"}},
	{label: "Dispatcher", kinds: typeKinds, suffixes: []string{"Dispatcher", "Router", "Dispatch"}},
	{label: "Observer", kinds: []symbols.Kind{symbols.KindTypeRecord, symbols.KindSumType, symbols.KindCapabilityContract}, suffixes: []string{"Observer", "Listener", "Subscriber"}},
	{label: "State Machine", kinds: sumType, suffixes: []string{"State", "Phase"}},
	{label: "State Machine", kinds: record, suffixes: []string{"StateMachine", "Fsm", "FSM"}},
	{label: "Visitor", kinds: []symbols.Kind{symbols.KindCapabilityContract, symbols.KindTypeRecord}, suffixes: []string{"Visitor"}},
	{label: "Strategy", kinds: contract, suffixes: []string{"Strategy", "Policy"}},
	{label: "Adapter", kinds: typeKinds, suffixes: []string{"Adapter", "Wrapper"}},
	{label: "Iterator", kinds: record, suffixes: []string{"Iter", "Iterator"}},
	{label: "Iterator", kinds: []symbols.Kind{symbols.KindContractBinding}, when: func(s symbols.Symbol) bool {
		return symbols.BaseName(s.TraitImpl) == "Iterator"
	}},
	{label: "RAII Guard", kinds: record, suffixes: []string{"Guard"}},
	{label: "RAII Guard", kinds: []symbols.Kind{symbols.KindContractBinding}, when: func(s symbols.Symbol) bool {
		return symbols.BaseName(s.TraitImpl) == "Drop"
	}},
	{label: "Command", kinds: sumType, suffixes: []string{"Command", "Action"}},
	{label: "Object Pool", kinds: record, suffixes: []string{"Pool"}},
	{label: "Newtype", kinds: record, when: func(s symbols.Symbol) bool { return s.IsTuple && len(s.Fields) == 1 }},
	{label: "Singleton", kinds: []symbols.Kind{symbols.KindGlobalMutable}, when: func(s symbols.Symbol) bool {
		return strings.Contains(s.ValueType, "OnceLock") || strings.Contains(s.ValueType, "OnceCell") ||
			strings.Contains(s.ValueType, "Lazy")
	}},
}

// designPattern returns at most one pattern label for s, or "".
func designPattern(s symbols.Symbol) string {
	for _, r := range patternRules {
		if r.matches(s) {
			return r.label
		}
	}
	return ""
}
