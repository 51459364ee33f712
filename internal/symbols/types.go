// Package symbols defines the data model shared by every stage of the analysis
// pipeline: the symbol records produced by extraction and the explanation
// fields filled in afterwards.
package symbols

import (
	"regexp"
	"strings"
)

// Kind classifies a top-level declaration.
type Kind string

const (
	KindTypeRecord         Kind = "type-record"
	KindSumType            Kind = "sum-type"
	KindCapabilityContract Kind = "capability-contract"
	KindContractBinding    Kind = "contract-binding"
	KindCallable           Kind = "callable"
	KindConstant           Kind = "constant"
	KindNamespace          Kind = "namespace"
	KindTypeAlias          Kind = "type-alias"
	KindMacroDef           Kind = "macro-def"
	KindImport             Kind = "import"
	KindGlobalMutable      Kind = "global-mutable"
	KindTaggedUnion        Kind = "tagged-union"
)

// AllKinds lists every Kind in extraction priority order.
var AllKinds = []Kind{
	KindTypeRecord,
	KindSumType,
	KindCapabilityContract,
	KindContractBinding,
	KindCallable,
	KindConstant,
	KindGlobalMutable,
	KindTypeAlias,
	KindNamespace,
	KindTaggedUnion,
	KindMacroDef,
	KindImport,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Label returns a short human-readable noun for the kind.
func (k Kind) Label() string {
	switch k {
	case KindTypeRecord:
		return "struct"
	case KindSumType:
		return "enum"
	case KindCapabilityContract:
		return "trait"
	case KindContractBinding:
		return "impl block"
	case KindCallable:
		return "function"
	case KindConstant:
		return "constant"
	case KindNamespace:
		return "module"
	case KindTypeAlias:
		return "type alias"
	case KindMacroDef:
		return "macro"
	case KindImport:
		return "import"
	case KindGlobalMutable:
		return "static"
	case KindTaggedUnion:
		return "union"
	}
	return string(k)
}

// Visibility is the declared reach of a symbol or member.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityCrate   Visibility = "public-scoped-crate"
	VisibilityParent  Visibility = "public-scoped-parent"
	VisibilityPrivate Visibility = "private"
)

// ReceiverKind classifies how a method or function takes self.
type ReceiverKind string

const (
	ReceiverNone      ReceiverKind = ""
	ReceiverExclusive ReceiverKind = "exclusive" // &mut self
	ReceiverShared    ReceiverKind = "shared"    // &self
	ReceiverOwned     ReceiverKind = "owned"     // self, mut self, self: T
)

// Field is one member of a struct or union.
type Field struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Comment    string     `json:"comment,omitempty"`
	Visibility Visibility `json:"visibility"`
}

// Variant is one alternative of an enum.
type Variant struct {
	Name         string `json:"name"`
	Data         string `json:"data,omitempty"`         // "(String)" or "{ x: i32 }"
	Discriminant string `json:"discriminant,omitempty"` // explicit "= 3"
	Comment      string `json:"comment,omitempty"`
}

// Method is a function declared inside a trait or impl block.
type Method struct {
	Name       string     `json:"name"`
	Signature  string     `json:"signature"`
	ReturnType string     `json:"return_type,omitempty"`
	IsUnsafe   bool       `json:"is_unsafe"`
	IsAsync    bool       `json:"is_async"`
	HasBody    bool       `json:"has_body"`
	Visibility Visibility `json:"visibility"`
	Comment    string     `json:"comment,omitempty"`
}

// AssociatedType is a `type Name = Value;` or `type Name;` member.
type AssociatedType struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Param is one parameter of a free function.
type Param struct {
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	IsMut    bool         `json:"is_mut"`
	IsSelf   bool         `json:"is_self"`
	Receiver ReceiverKind `json:"receiver,omitempty"`
}

// Symbol is one extracted top-level declaration. Line and EndLine are 0-based
// indices into the normalized buffer's lines.
type Symbol struct {
	Name       string     `json:"name"`
	Kind       Kind       `json:"kind"`
	Visibility Visibility `json:"visibility"`
	Line       int        `json:"line"`
	EndLine    int        `json:"end_line"`
	Doc        string     `json:"doc,omitempty"`
	Signature  string     `json:"signature,omitempty"`
	Attributes []string   `json:"attributes,omitempty"`

	Fields          []Field          `json:"fields,omitempty"`
	Variants        []Variant        `json:"variants,omitempty"`
	Methods         []Method         `json:"methods,omitempty"`
	AssociatedTypes []AssociatedType `json:"associated_types,omitempty"`
	Params          []Param          `json:"params,omitempty"`
	ReturnType      string           `json:"return_type,omitempty"`

	TraitImpl   string   `json:"trait_impl,omitempty"`
	Target      string   `json:"target,omitempty"`
	Supertraits []string `json:"supertraits,omitempty"`
	AliasOf     string   `json:"alias_of,omitempty"`
	ValueType   string   `json:"value_type,omitempty"`
	IsUnsafe    bool     `json:"is_unsafe,omitempty"`
	IsAsync     bool     `json:"is_async,omitempty"`
	IsMut       bool     `json:"is_mut,omitempty"`
	IsTuple     bool     `json:"is_tuple,omitempty"`

	// Derived by the explanation pass; never set during extraction.
	WhyItExists   string   `json:"why_it_exists,omitempty"`
	HowItWorks    string   `json:"how_it_works,omitempty"`
	DesignPattern string   `json:"design_pattern,omitempty"`
	MemoryNote    string   `json:"memory_note,omitempty"`
	SafetyNote    string   `json:"safety_note,omitempty"`
	Relationships []string `json:"relationships,omitempty"`
}

// Explanation is the derived commentary for one symbol.
type Explanation struct {
	Why           string   `json:"why"`
	How           string   `json:"how"`
	Pattern       string   `json:"pattern,omitempty"`
	MemoryNote    string   `json:"memory_note,omitempty"`
	SafetyNote    string   `json:"safety_note,omitempty"`
	Relationships []string `json:"relationships"`
}

// WithExplanation returns a copy of s carrying the derived fields of e.
func (s Symbol) WithExplanation(e Explanation) Symbol {
	s.WhyItExists = e.Why
	s.HowItWorks = e.How
	s.DesignPattern = e.Pattern
	s.MemoryNote = e.MemoryNote
	s.SafetyNote = e.SafetyNote
	s.Relationships = e.Relationships
	return s
}

// IsTypeLike reports whether the symbol declares a data type that bindings can target.
func (s Symbol) IsTypeLike() bool {
	return s.Kind == KindTypeRecord || s.Kind == KindSumType || s.Kind == KindTaggedUnion
}

var (
	lifetimeRe = regexp.MustCompile(`'[A-Za-z_]\w*`)
	identRe    = regexp.MustCompile(`[A-Za-z_]\w*`)
)

// BaseName reduces a written type or path to its bare identifier:
// "fmt::Display" is "Display", "&'a mut Vec<T>" is "Vec", "[T]" is "T".
func BaseName(t string) string {
	t = lifetimeRe.ReplaceAllString(t, "")
	if i := strings.IndexByte(t, '<'); i >= 0 {
		t = t[:i]
	}
	if i := strings.LastIndex(t, "::"); i >= 0 {
		t = t[i+2:]
	}
	for _, w := range identRe.FindAllString(t, -1) {
		switch w {
		case "mut", "dyn", "const", "impl":
			continue
		}
		return w
	}
	return ""
}
