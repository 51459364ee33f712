package explain

import (
	"strings"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

// typeTexts collects every written type the symbol carries.
func typeTexts(s symbols.Symbol) []string {
	var out []string
	for _, f := range s.Fields {
		out = append(out, f.Type)
	}
	for _, v := range s.Variants {
		if v.Data != "" {
			out = append(out, v.Data)
		}
	}
	for _, a := range []string{s.ValueType, s.AliasOf} {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func anyWord(texts []string, words ...string) bool {
	for _, t := range texts {
		for _, w := range words {
			if containsWord(t, w) {
				return true
			}
		}
	}
	return false
}

func rawPointer(texts []string) bool {
	for _, t := range texts {
		if strings.Contains(t, "*const ") || strings.Contains(t, "*mut ") {
			return true
		}
	}
	return false
}

type noteRule struct {
	words []string
	when  func(s symbols.Symbol, types []string) bool
	note  string
}

var memoryRules = []noteRule{
	{words: []string{"Arc"}, note: "Shared ownership through Arc: the value is reference-counted atomically and freed when the last clone drops, so it can cross threads."},
	{words: []string{"Rc"}, note: "Shared ownership through Rc: the value is reference-counted and freed when the last clone drops; the count is not thread-safe."},
	{words: []string{"Mutex", "RwLock"}, note: "Access is serialized by a lock; holders must release it before others can read or write."},
	{words: []string{"RefCell", "Cell"}, note: "Interior mutability: contents can change through a shared reference, with borrow rules checked at run time."},
	{words: []string{"Box"}, note: "Part of the value lives on the heap behind a Box, keeping the outer value a fixed, small size."},
	{words: []string{"Vec", "String", "HashMap", "BTreeMap", "HashSet", "VecDeque"}, note: "Owns growable heap buffers that reallocate as they grow and are freed when the value drops."},
	{when: func(_ symbols.Symbol, types []string) bool { return rawPointer(types) }, note: "Holds raw pointers the compiler does not track; the pointee's lifetime must be managed by hand."},
	{when: func(s symbols.Symbol, _ []string) bool {
		return s.Kind == symbols.KindTypeRecord && len(s.Fields) == 0
	}, note: "Zero-sized: values occupy no memory at all."},
	{when: func(s symbols.Symbol, _ []string) bool {
		return s.Kind == symbols.KindSumType && len(s.Variants) > 0 && fieldless(s)
	}, note: "Stored as a single discriminant, typically one byte."},
	{when: func(s symbols.Symbol, _ []string) bool {
		return s.Kind == symbols.KindTaggedUnion
	}, note: "Sized to its largest field; all fields share the same bytes."},
}

// memoryNote returns a note about ownership and layout, or "".
func memoryNote(s symbols.Symbol) string {
	types := typeTexts(s)
	for _, r := range memoryRules {
		if len(r.words) > 0 && anyWord(types, r.words...) {
			return r.note
		}
		if r.when != nil && r.when(s, types) {
			return r.note
		}
	}
	return ""
}

var safetyRules = []noteRule{
	{when: func(s symbols.Symbol, _ []string) bool { return s.Kind == symbols.KindTaggedUnion },
		note: "Reading a union field is unsafe: the compiler cannot know which field was last written."},
	{when: func(s symbols.Symbol, _ []string) bool { return s.Kind == symbols.KindGlobalMutable && s.IsMut },
		note: "Every access to a static mut is unsafe and can race between threads; prefer an atomic or a lock."},
	{when: func(s symbols.Symbol, _ []string) bool { return s.Kind == symbols.KindContractBinding && s.IsUnsafe },
		note: "Unsafe impl: the author promises the contract's invariants hold, and the compiler cannot check them."},
	{when: func(s symbols.Symbol, _ []string) bool { return s.Kind == symbols.KindCapabilityContract && s.IsUnsafe },
		note: "Unsafe trait: implementors must uphold invariants the compiler cannot verify."},
	{when: func(s symbols.Symbol, _ []string) bool { return s.Kind == symbols.KindCallable && s.IsUnsafe },
		note: "Unsafe to call: callers must uphold the preconditions the compiler cannot check."},
	{when: func(_ symbols.Symbol, types []string) bool { return rawPointer(types) },
		note: "Dereferencing the raw pointers it holds requires unsafe code."},
	{when: func(s symbols.Symbol, _ []string) bool {
		for _, m := range s.Methods {
			if m.IsUnsafe {
				return true
			}
		}
		return false
	}, note: "Some methods are unsafe to call and carry their own preconditions."},
}

// safetyNote returns a note about unsafe code, or "".
func safetyNote(s symbols.Symbol) string {
	types := typeTexts(s)
	for _, p := range s.Params {
		types = append(types, p.Type)
	}
	for _, r := range safetyRules {
		if r.when(s, types) {
			return r.note
		}
	}
	return ""
}
