package explain

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ferrite/internal/extractor"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

// Test Plan for Explain:
// - Constructors, fieldless enums and external contract impls get the expected commentary
// - Name rules strip prefixes and suffixes before templating
// - Unmatched symbols fall back to a kind-and-count sentence
// - Attribute clauses follow declaration order
// - Pattern detection returns at most one label
// - Memory and safety notes fire on wrapper types, unsafe qualifiers and unions
// - Relationships match whole words only, are de-duplicated and capped
// - All leaves its input untouched

func fixture(t *testing.T) []symbols.Symbol {
	t.Helper()
	data, err := os.ReadFile("../../testdata/rust/inventory.rs")
	require.NoError(t, err)
	return extractor.Extract(string(data))
}

func lookup(t *testing.T, syms []symbols.Symbol, name string, kind symbols.Kind) symbols.Symbol {
	t.Helper()
	for _, s := range syms {
		if s.Name == name && s.Kind == kind {
			return s
		}
	}
	require.Failf(t, "symbol not found", "%s %s", kind, name)
	return symbols.Symbol{}
}

// Test: a new() function is described as a constructor
func TestExplain_Constructor(t *testing.T) {
	t.Parallel()

	syms := extractor.Extract("fn new() -> Self { Self {} }")
	require.Len(t, syms, 1)

	e := Explain(syms[0], syms)
	assert.Contains(t, e.Why, "Constructor")
	assert.Contains(t, e.How, "returns Self")
}

// Test: a fieldless enum is described by its discriminant
func TestExplain_FieldlessEnum(t *testing.T) {
	t.Parallel()

	syms := extractor.Extract("enum Status { Active, Paused, Stopped }")
	require.Len(t, syms, 1)

	e := Explain(syms[0], syms)
	assert.Contains(t, e.How, "discriminant")
	assert.Contains(t, e.How, "fieldless")
	assert.Contains(t, e.Why, "3 possible states")
	assert.NotEmpty(t, e.MemoryNote)
	assert.Empty(t, e.SafetyNote)
}

// Test: an impl of an external contract relates to nothing
func TestExplain_ExternalContract(t *testing.T) {
	t.Parallel()

	syms := extractor.Extract("impl Display for Foo { fn fmt(&self) {} }")
	require.Len(t, syms, 1)

	e := Explain(syms[0], syms)
	assert.NotNil(t, e.Relationships)
	assert.Empty(t, e.Relationships)
	assert.Contains(t, e.Why, "human-readable")
	assert.Contains(t, e.How, "fmt")
}

func TestWhy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sym  symbols.Symbol
		want string
	}{
		{"main", symbols.Symbol{Kind: symbols.KindCallable, Name: "main"}, "entry point"},
		{"test attribute", symbols.Symbol{Kind: symbols.KindCallable, Name: "adds_up", Attributes: []string{"#[test]"}}, "Test case"},
		{"predicate", symbols.Symbol{Kind: symbols.KindCallable, Name: "is_empty"}, "whether empty holds"},
		{"accessor", symbols.Symbol{Kind: symbols.KindCallable, Name: "get_user_name"}, "reads the user name"},
		{"builder struct", symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "RequestBuilder"}, "producing a request"},
		{"error enum", symbols.Symbol{Kind: symbols.KindSumType, Name: "ParseError", Variants: make([]symbols.Variant, 2)}, "2 distinct ways parse can fail"},
		{"marker struct", symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Marker"}, "Marker type"},
		{"newtype", symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Meters", IsTuple: true, Fields: []symbols.Field{{Name: "0", Type: "f64"}}}, "wraps f64"},
		{"limit constant", symbols.Symbol{Kind: symbols.KindConstant, Name: "MAX_ITEMS"}, "Limit that bounds items"},
		{"static mut", symbols.Symbol{Kind: symbols.KindGlobalMutable, Name: "COUNTER", IsMut: true}, "Global mutable counter"},
		{"drop impl", symbols.Symbol{Kind: symbols.KindContractBinding, Name: "Conn", TraitImpl: "Drop"}, "cleanup"},
		{"path-qualified trait", symbols.Symbol{Kind: symbols.KindContractBinding, Name: "Item", TraitImpl: "fmt::Display"}, "human-readable"},
		{"result alias", symbols.Symbol{Kind: symbols.KindTypeAlias, Name: "Result", AliasOf: "std::result::Result<T, Error>"}, "Shorthand result"},
		{"test module", symbols.Symbol{Kind: symbols.KindNamespace, Name: "tests"}, "Unit tests"},
		{"struct fallback", symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Point", Fields: []symbols.Field{{Name: "x"}, {Name: "y"}}}, "Groups 2 related fields into a single point value"},
		{"inherent impl fallback", symbols.Symbol{Kind: symbols.KindContractBinding, Name: "Point", Methods: []symbols.Method{{Name: "norm"}}}, "Attaches 1 method directly to Point"},
		{"import fallback", symbols.Symbol{Kind: symbols.KindImport, Name: "HashMap"}, "Brings HashMap into scope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Contains(t, why(tt.sym), tt.want)
		})
	}
}

// Test: every clause of every attribute appears in declaration order
func TestHow_AttributeOrder(t *testing.T) {
	t.Parallel()

	s := symbols.Symbol{
		Kind:       symbols.KindTypeRecord,
		Name:       "Pixel",
		Fields:     []symbols.Field{{Name: "r", Type: "u8"}},
		Attributes: []string{"#[repr(C)]", "#[derive(Debug, Clone)]", "#[unknown_thing]", "#[non_exhaustive]"},
	}
	text := how(s)

	order := []string{"stores r", "C-compatible", "Debug formatting", "Clone is derived", "non-exhaustive"}
	last := -1
	for _, want := range order {
		i := strings.Index(text, want)
		require.GreaterOrEqual(t, i, 0, "missing %q in %q", want, text)
		assert.Greater(t, i, last, "%q out of order in %q", want, text)
		last = i
	}
}

func TestParseAttr(t *testing.T) {
	t.Parallel()

	d := parseAttr("#[derive(Debug, serde::Serialize)]")
	assert.Equal(t, "derive", d.name)
	assert.Equal(t, []string{"Debug", "serde::Serialize"}, d.args)

	d = parseAttr("#[cfg(all(test, unix))]")
	assert.Equal(t, "cfg", d.name)
	assert.Equal(t, "all(test, unix)", d.body)
	assert.Equal(t, []string{"all(test, unix)"}, d.args)

	d = parseAttr("#![allow(dead_code)]")
	assert.Equal(t, "allow", d.name)

	d = parseAttr(`#[doc = "hidden"]`)
	assert.Equal(t, "doc", d.name)
	assert.Equal(t, `"hidden"`, d.body)

	d = parseAttr("#[test]")
	assert.Equal(t, "test", d.name)
	assert.Empty(t, d.args)
}

func TestDesignPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sym  symbols.Symbol
		want string
	}{
		{symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "ConfigBuilder"}, "Builder"},
		{symbols.Symbol{Kind: symbols.KindSumType, Name: "ConnState"}, "State Machine"},
		{symbols.Symbol{Kind: symbols.KindCapabilityContract, Name: "EventListener"}, "Observer"},
		{symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "HandlerRegistry"}, "Registry"},
		{symbols.Symbol{Kind: symbols.KindContractBinding, Name: "Lines", TraitImpl: "Iterator"}, "Iterator"},
		{symbols.Symbol{Kind: symbols.KindContractBinding, Name: "Lock", TraitImpl: "Drop"}, "RAII Guard"},
		{symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Meters", IsTuple: true, Fields: []symbols.Field{{Name: "0", Type: "f64"}}}, "Newtype"},
		{symbols.Symbol{Kind: symbols.KindCallable, Name: "helper"}, ""},
		{symbols.Symbol{Kind: symbols.KindSumType, Name: "Status"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, designPattern(tt.sym), tt.sym.Name)
	}
}

func TestNotes_Fixture(t *testing.T) {
	t.Parallel()

	syms := fixture(t)

	inv := lookup(t, syms, "Inventory", symbols.KindTypeRecord)
	assert.Contains(t, memoryNote(inv), "Arc")

	counter := lookup(t, syms, "COUNTER", symbols.KindGlobalMutable)
	assert.Contains(t, safetyNote(counter), "static mut")

	raw := lookup(t, syms, "Raw", symbols.KindTaggedUnion)
	assert.Contains(t, safetyNote(raw), "union")
	assert.Contains(t, memoryNote(raw), "largest field")

	bump := lookup(t, syms, "bump", symbols.KindCallable)
	assert.Contains(t, safetyNote(bump), "Unsafe to call")

	item := lookup(t, syms, "Item", symbols.KindTypeRecord)
	assert.Empty(t, safetyNote(item))
}

func TestNotes_RawPointer(t *testing.T) {
	t.Parallel()

	s := symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Buf", Fields: []symbols.Field{{Name: "ptr", Type: "*const u8"}}}
	assert.Contains(t, memoryNote(s), "raw pointers")
	assert.Contains(t, safetyNote(s), "raw pointers")

	// Rc must not fire on Rcv, Cell must not fire on Cellar.
	s = symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Wine", Fields: []symbols.Field{{Name: "c", Type: "Cellar"}, {Name: "r", Type: "Rcv"}}}
	assert.Empty(t, memoryNote(s))
}

func TestRelationships_Fixture(t *testing.T) {
	t.Parallel()

	syms := fixture(t)

	inv := lookup(t, syms, "Inventory", symbols.KindTypeRecord)
	assert.Equal(t, []string{"has inherent impl", "implements Store", "uses Item"}, relationships(inv, syms))

	item := lookup(t, syms, "Item", symbols.KindTypeRecord)
	rel := relationships(item, syms)
	assert.Contains(t, rel, "implements Display")
	assert.Contains(t, rel, "uses ItemId")

	store := lookup(t, syms, "Store", symbols.KindCapabilityContract)
	rel = relationships(store, syms)
	assert.Equal(t, "implemented by Inventory", rel[0])
	assert.Contains(t, rel, "uses ItemId")
	assert.NotContains(t, rel, "requires Send")

	restock := lookup(t, syms, "restock", symbols.KindCallable)
	assert.Equal(t, []string{"uses Store"}, relationships(restock, syms))

	for _, s := range syms {
		if s.Kind == symbols.KindContractBinding && s.TraitImpl == "Store" {
			rel := relationships(s, syms)
			assert.Contains(t, rel, "implements Store")
			assert.Contains(t, rel, "adds behavior to Inventory")
		}
	}
}

// Test: "Id" is not found inside "Valid"
func TestRelationships_WholeWords(t *testing.T) {
	t.Parallel()

	id := symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Id"}
	form := symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Form", Fields: []symbols.Field{{Name: "state", Type: "Valid"}}}
	owner := symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Owner", Fields: []symbols.Field{{Name: "id", Type: "Option<Id>"}}}
	all := []symbols.Symbol{id, form, owner}

	assert.Empty(t, relationships(form, all))
	assert.Equal(t, []string{"uses Id"}, relationships(owner, all))
}

func TestRelationships_DedupAndCap(t *testing.T) {
	t.Parallel()

	var all []symbols.Symbol
	hub := symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Hub"}
	for _, n := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		all = append(all, symbols.Symbol{Kind: symbols.KindTypeRecord, Name: n})
		hub.Fields = append(hub.Fields, symbols.Field{Name: strings.ToLower(n), Type: n}, symbols.Field{Name: strings.ToLower(n) + "2", Type: "Vec<" + n + ">"})
	}
	all = append(all, hub)

	rel := relationships(hub, all)
	assert.Len(t, rel, MaxRelationships)
	assert.Equal(t, []string{"uses A", "uses B", "uses C", "uses D", "uses E", "uses F"}, rel)

	pair := symbols.Symbol{Kind: symbols.KindTypeRecord, Name: "Pair", Fields: []symbols.Field{{Name: "l", Type: "A"}, {Name: "r", Type: "A"}}}
	assert.Equal(t, []string{"uses A"}, relationships(pair, append(all, pair)))
}

// Test: every fixture symbol gets commentary and All copies
func TestAll(t *testing.T) {
	t.Parallel()

	syms := fixture(t)
	out := All(syms)
	require.Len(t, out, len(syms))

	for i, s := range out {
		assert.NotEmpty(t, s.WhyItExists, s.Name)
		assert.NotEmpty(t, s.HowItWorks, s.Name)
		assert.NotNil(t, s.Relationships, s.Name)
		assert.LessOrEqual(t, len(s.Relationships), MaxRelationships, s.Name)
		assert.Empty(t, syms[i].WhyItExists, "input must not be modified")
	}
}

func TestHumanize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http server config", humanize("HttpServerConfig"))
	assert.Equal(t, "max items", humanize("MAX_ITEMS"))
	assert.Equal(t, "parse url value", humanize("parseURLValue"))
	assert.Equal(t, "user name", humanize("user_name"))
}

func TestList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", list(nil))
	assert.Equal(t, "a", list([]string{"a"}))
	assert.Equal(t, "a and b", list([]string{"a", "b"}))
	assert.Equal(t, "a, b, c and d", list([]string{"a", "b", "c", "d"}))
	assert.Equal(t, "a, b, c, d and 2 more", list([]string{"a", "b", "c", "d", "e", "f"}))
}
