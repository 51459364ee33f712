package explain

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

// whyRule matches when the symbol's kind is listed (or kinds is empty), its
// name satisfies one of the name tests (or none are given) and when, if set,
// holds. stem is the humanized name with the matched prefix or suffix removed.
type whyRule struct {
	kinds    []symbols.Kind
	exact    []string
	prefixes []string
	suffixes []string
	contains []string
	when     func(s symbols.Symbol) bool
	say      func(s symbols.Symbol, stem string) string
}

func (r whyRule) apply(s symbols.Symbol) (string, bool) {
	if len(r.kinds) > 0 && !kindIn(s.Kind, r.kinds) {
		return "", false
	}
	stem, ok := r.matchName(s.Name)
	if !ok {
		return "", false
	}
	if r.when != nil && !r.when(s) {
		return "", false
	}
	return r.say(s, stem), true
}

func (r whyRule) matchName(name string) (string, bool) {
	if len(r.exact)+len(r.prefixes)+len(r.suffixes)+len(r.contains) == 0 {
		return humanize(name), true
	}
	for _, e := range r.exact {
		if name == e {
			return humanize(name), true
		}
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(name, p) && len(name) > len(p) {
			return humanize(name[len(p):]), true
		}
	}
	for _, sfx := range r.suffixes {
		if strings.HasSuffix(name, sfx) {
			if stem := strings.TrimSuffix(name, sfx); stem != "" {
				return humanize(stem), true
			}
			return humanize(name), true
		}
	}
	for _, c := range r.contains {
		if strings.Contains(name, c) {
			stem := strings.Trim(strings.Replace(name, c, "", 1), "_")
			if stem == "" {
				stem = name
			}
			return humanize(stem), true
		}
	}
	return "", false
}

func kindIn(k symbols.Kind, kinds []symbols.Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

var (
	callable = []symbols.Kind{symbols.KindCallable}
	record   = []symbols.Kind{symbols.KindTypeRecord}
	sumType  = []symbols.Kind{symbols.KindSumType}
	contract = []symbols.Kind{symbols.KindCapabilityContract}
	constant = []symbols.Kind{symbols.KindConstant}
)

// onTrait matches contract-bindings whose contract base name is one of traits.
func onTrait(say func(s symbols.Symbol, trait string) string, traits ...string) whyRule {
	return whyRule{
		kinds: []symbols.Kind{symbols.KindContractBinding},
		when: func(s symbols.Symbol) bool {
			base := symbols.BaseName(s.TraitImpl)
			for _, t := range traits {
				if base == t {
					return true
				}
			}
			return false
		},
		say: func(s symbols.Symbol, _ string) string { return say(s, symbols.BaseName(s.TraitImpl)) },
	}
}

func returns(s symbols.Symbol) string {
	if s.ReturnType == "" {
		return "value"
	}
	return s.ReturnType
}

// whyRules is evaluated top to bottom; the first match wins.
var whyRules = []whyRule{
	// callables
	{kinds: callable, exact: []string{"main"}, say: func(s symbols.Symbol, _ string) string {
		return "Program entry point: execution starts here and the process exits when it returns."
	}},
	{kinds: callable, when: func(s symbols.Symbol) bool { return hasAttr(s, "test") || hasAttr(s, "tokio::test") }, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Test case that checks %s behaves as expected.", strings.TrimPrefix(stem, "test "))
	}},
	{kinds: callable, prefixes: []string{"test_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Test case that checks %s behaves as expected.", stem)
	}},
	{kinds: callable, exact: []string{"new", "default"}, prefixes: []string{"new_", "with_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Constructor: creates and returns a new %s ready for use, so callers never assemble it field by field.", returns(s))
	}},
	{kinds: callable, exact: []string{"from", "into"}, prefixes: []string{"from_", "to_", "into_", "as_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Conversion helper that turns one representation into another (%s).", stem)
	}},
	{kinds: callable, prefixes: []string{"is_", "has_", "can_", "should_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Predicate answering whether %s holds.", stem)
	}},
	{kinds: callable, prefixes: []string{"get_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Accessor that reads the %s without exposing the underlying storage.", stem)
	}},
	{kinds: callable, prefixes: []string{"set_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Mutator that updates the %s in one controlled place.", stem)
	}},
	{kinds: callable, prefixes: []string{"try_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Fallible version of %s that reports failure to the caller instead of panicking.", stem)
	}},
	{kinds: callable, exact: []string{"parse", "decode", "deserialize"}, prefixes: []string{"parse_", "decode_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Parser that turns raw input into structured %s data.", stem)
	}},
	{kinds: callable, exact: []string{"build", "finish"}, say: func(s symbols.Symbol, _ string) string {
		return fmt.Sprintf("Final step of a builder: assembles the accumulated settings into a %s.", returns(s))
	}},
	{kinds: callable, prefixes: []string{"handle_", "on_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Event handler that reacts to %s.", stem)
	}},
	{kinds: callable, exact: []string{"run", "start", "spawn", "execute", "exec"}, prefixes: []string{"run_", "start_", "spawn_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Driver that sets %s in motion.", stem)
	}},
	{kinds: callable, exact: []string{"init", "setup", "configure"}, prefixes: []string{"init_", "setup_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Initialization routine that prepares %s before first use.", stem)
	}},
	{kinds: callable, exact: []string{"validate", "check", "verify"}, prefixes: []string{"validate_", "check_", "verify_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Validation step that checks %s and rejects bad input early.", stem)
	}},
	{kinds: callable, prefixes: []string{"create_", "make_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Factory function that produces a configured %s.", stem)
	}},

	// type-records
	{kinds: record, suffixes: []string{"Builder"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Builder that collects options step by step before producing a %s.", stem)
	}},
	{kinds: record, suffixes: []string{"Config", "Configuration", "Options", "Settings"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Configuration bundle that keeps the %s settings in one place.", stem)
	}},
	{kinds: record, suffixes: []string{"Error"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Error type describing what can go wrong in %s.", stem)
	}},
	{kinds: record, suffixes: []string{"Context", "Ctx"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Context object that carries shared %s state through a chain of calls.", stem)
	}},
	{kinds: record, suffixes: []string{"State"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("State holder that tracks the current %s.", stem)
	}},
	{kinds: record, suffixes: []string{"Manager", "Service", "Controller"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Coordinator that owns the %s resources and mediates access to them.", stem)
	}},
	{kinds: record, suffixes: []string{"Handler"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Handler responsible for processing %s.", stem)
	}},
	{kinds: record, suffixes: []string{"Registry"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Registry that keeps track of known %s entries and looks them up by key.", stem)
	}},
	{kinds: record, suffixes: []string{"Cache"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Cache that keeps recently used %s values close at hand.", stem)
	}},
	{kinds: record, suffixes: []string{"Client", "Server"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Endpoint for %s communication.", stem)
	}},
	{kinds: record, suffixes: []string{"Request", "Response"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Message payload exchanged in a %s round trip.", stem)
	}},
	{kinds: record, suffixes: []string{"Iter", "Iterator"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Iterator state that walks over %s one item at a time.", stem)
	}},
	{kinds: record, suffixes: []string{"Guard"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Guard that holds the %s for as long as it lives and releases it when dropped.", stem)
	}},
	{kinds: record, suffixes: []string{"Id", "ID"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Identifier that names a %s uniquely.", stem)
	}},
	{kinds: record, suffixes: []string{"Event", "Message"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Message describing something that happened to a %s.", stem)
	}},
	{kinds: record, suffixes: []string{"Node"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Node in a linked or tree-shaped %s structure.", stem)
	}},
	{kinds: record, suffixes: []string{"Pool"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Pool that hands out reusable %s resources.", stem)
	}},
	{kinds: record, when: func(s symbols.Symbol) bool { return len(s.Fields) == 0 }, say: func(s symbols.Symbol, _ string) string {
		return "Marker type with no data; its meaning comes entirely from the type itself."
	}},
	{kinds: record, when: func(s symbols.Symbol) bool { return s.IsTuple && len(s.Fields) == 1 }, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Newtype that wraps %s so a %s cannot be mixed up with other values of the same underlying type.", s.Fields[0].Type, stem)
	}},

	// sum-types
	{kinds: sumType, suffixes: []string{"Error"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Error enum listing the %d distinct ways %s can fail.", len(s.Variants), stem)
	}},
	{kinds: sumType, suffixes: []string{"Kind", "Type"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Classifier naming the %d kinds of %s.", len(s.Variants), stem)
	}},
	{kinds: sumType, suffixes: []string{"State", "Status", "Phase"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Tracks which of %d possible states a %s is in.", len(s.Variants), stem)
	}},
	{kinds: sumType, suffixes: []string{"Event", "Message", "Command", "Action", "Request"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Message type covering the %d kinds of %s the program reacts to.", len(s.Variants), stem)
	}},
	{kinds: sumType, when: func(s symbols.Symbol) bool { return len(s.Variants) > 0 && fieldless(s) }, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Fixed set of %d named options for %s, checked exhaustively by the compiler.", len(s.Variants), stem)
	}},

	// capability-contracts
	{kinds: contract, suffixes: []string{"able", "ible"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Capability contract for anything that is %s.", humanize(s.Name))
	}},
	{kinds: contract, suffixes: []string{"Handler", "Listener", "Observer", "Subscriber"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Callback contract implemented by types that want to react to %s.", stem)
	}},
	{kinds: contract, suffixes: []string{"Visitor"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Visitor contract for walking %s structures without changing them.", stem)
	}},
	{kinds: contract, suffixes: []string{"Repository", "Repo", "Store", "Storage"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Storage abstraction that hides how %s data is persisted.", stem)
	}},

	// contract-bindings
	onTrait(func(s symbols.Symbol, _ string) string {
		return fmt.Sprintf("Gives %s a human-readable text form for printing and formatting.", s.Name)
	}, "Display"),
	onTrait(func(s symbols.Symbol, _ string) string {
		return fmt.Sprintf("Gives %s a developer-facing debug representation.", s.Name)
	}, "Debug"),
	onTrait(func(s symbols.Symbol, _ string) string {
		return fmt.Sprintf("Provides a sensible default value for %s.", s.Name)
	}, "Default"),
	onTrait(func(s symbols.Symbol, trait string) string {
		return fmt.Sprintf("Lets other values convert into %s via %s.", s.Name, s.TraitImpl)
	}, "From", "TryFrom", "FromStr"),
	onTrait(func(s symbols.Symbol, trait string) string {
		return fmt.Sprintf("Lets %s convert into another type via %s.", s.Name, s.TraitImpl)
	}, "Into", "TryInto"),
	onTrait(func(s symbols.Symbol, _ string) string {
		return fmt.Sprintf("Runs cleanup code automatically when a %s goes out of scope.", s.Name)
	}, "Drop"),
	onTrait(func(s symbols.Symbol, _ string) string {
		return fmt.Sprintf("Makes %s usable in for loops and iterator chains.", s.Name)
	}, "Iterator", "IntoIterator"),
	onTrait(func(s symbols.Symbol, trait string) string {
		return fmt.Sprintf("Lets %s values be duplicated (%s).", s.Name, trait)
	}, "Clone", "Copy"),
	onTrait(func(s symbols.Symbol, trait string) string {
		return fmt.Sprintf("Defines how %s values compare (%s).", s.Name, trait)
	}, "PartialEq", "Eq", "PartialOrd", "Ord", "Hash"),
	onTrait(func(s symbols.Symbol, trait string) string {
		return fmt.Sprintf("Lets %s be used transparently as the value it wraps (%s).", s.Name, trait)
	}, "Deref", "DerefMut", "AsRef", "AsMut", "Borrow"),
	onTrait(func(s symbols.Symbol, _ string) string {
		return fmt.Sprintf("Marks %s as a standard error type that works with ? and error reporting.", s.Name)
	}, "Error"),
	onTrait(func(s symbols.Symbol, trait string) string {
		return fmt.Sprintf("Declares %s safe to use across threads (%s).", s.Name, trait)
	}, "Send", "Sync"),
	onTrait(func(s symbols.Symbol, _ string) string {
		return fmt.Sprintf("Lets %s be written to and read from serialized formats.", s.Name)
	}, "Serialize", "Deserialize"),

	// constants and statics
	{kinds: constant, contains: []string{"MAX", "MIN", "LIMIT"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Limit that bounds %s so the value is defined once instead of repeated as a magic number.", stem)
	}},
	{kinds: constant, prefixes: []string{"DEFAULT_"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Default used for %s when nothing else is configured.", stem)
	}},
	{kinds: constant, contains: []string{"VERSION"}, say: func(s symbols.Symbol, _ string) string {
		return "Version identifier baked into the build."
	}},
	{kinds: constant, contains: []string{"TIMEOUT", "INTERVAL", "DELAY"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Timing setting for %s.", stem)
	}},
	{kinds: constant, contains: []string{"SIZE", "CAPACITY", "LEN"}, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Size setting for %s.", stem)
	}},
	{kinds: []symbols.Kind{symbols.KindGlobalMutable}, when: func(s symbols.Symbol) bool { return s.IsMut }, say: func(s symbols.Symbol, stem string) string {
		return fmt.Sprintf("Global mutable %s shared by the whole program.", stem)
	}},

	// the rest
	{kinds: []symbols.Kind{symbols.KindTypeAlias}, when: func(s symbols.Symbol) bool {
		return s.Name == "Result" || strings.Contains(s.AliasOf, "Result<")
	}, say: func(s symbols.Symbol, _ string) string {
		return "Shorthand result type with the error type fixed, so signatures across the module stay short."
	}},
	{kinds: []symbols.Kind{symbols.KindNamespace}, when: func(s symbols.Symbol) bool {
		return s.Name == "tests" || hasCfgTest(s)
	}, say: func(s symbols.Symbol, _ string) string {
		return "Unit tests for the surrounding code, compiled only for test runs."
	}},
}

// why returns the purpose sentence for s.
func why(s symbols.Symbol) string {
	for _, r := range whyRules {
		if text, ok := r.apply(s); ok {
			return text
		}
	}
	return fallbackWhy(s)
}

func fallbackWhy(s symbols.Symbol) string {
	name := humanize(s.Name)
	switch s.Kind {
	case symbols.KindTypeRecord:
		return fmt.Sprintf("Groups %d related %s into a single %s value.", len(s.Fields), plural(len(s.Fields), "field", "fields"), name)
	case symbols.KindSumType:
		return fmt.Sprintf("Represents a %s that is exactly one of %d %s.", name, len(s.Variants), plural(len(s.Variants), "variant", "variants"))
	case symbols.KindCapabilityContract:
		return fmt.Sprintf("Defines a shared %s contract of %d %s that types can implement.", name, len(s.Methods), plural(len(s.Methods), "method", "methods"))
	case symbols.KindContractBinding:
		if s.TraitImpl != "" {
			return fmt.Sprintf("Implements the %s contract for %s.", s.TraitImpl, s.Name)
		}
		return fmt.Sprintf("Attaches %d %s directly to %s.", len(s.Methods), plural(len(s.Methods), "method", "methods"), s.Name)
	case symbols.KindCallable:
		return fmt.Sprintf("Performs the %s operation.", name)
	case symbols.KindConstant:
		return fmt.Sprintf("Names a fixed %s value so it is written once and reused.", name)
	case symbols.KindGlobalMutable:
		return fmt.Sprintf("Holds a %s value that lives for the whole program.", name)
	case symbols.KindTypeAlias:
		if s.AliasOf != "" {
			return fmt.Sprintf("Gives %s a shorter, more meaningful name.", s.AliasOf)
		}
		return fmt.Sprintf("Names the %s type.", name)
	case symbols.KindNamespace:
		return fmt.Sprintf("Groups related %s items under one path.", name)
	case symbols.KindTaggedUnion:
		return "Lets several views of the same bytes share one memory slot, typically for FFI or low-level layouts."
	case symbols.KindMacroDef:
		return fmt.Sprintf("Generates repetitive %s code at compile time.", name)
	case symbols.KindImport:
		return fmt.Sprintf("Brings %s into scope so it can be used without its full path.", s.Name)
	}
	return fmt.Sprintf("Declares %s.", s.Name)
}
