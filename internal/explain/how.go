package explain

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

// directive is a parsed outer attribute. For #[derive(Debug, Clone)] name is
// "derive" and args are ["Debug", "Clone"]; body keeps the raw argument text.
type directive struct {
	name string
	args []string
	body string
}

func parseAttr(raw string) directive {
	inner := strings.TrimSpace(raw)
	inner = strings.TrimPrefix(inner, "#")
	inner = strings.TrimPrefix(inner, "!")
	inner = strings.TrimSpace(inner)
	inner = strings.TrimPrefix(inner, "[")
	inner = strings.TrimSuffix(inner, "]")
	inner = strings.TrimSpace(inner)

	i := strings.IndexAny(inner, "(=")
	if i < 0 {
		return directive{name: inner}
	}
	d := directive{name: strings.TrimSpace(inner[:i])}
	if inner[i] == '=' {
		d.body = strings.TrimSpace(inner[i+1:])
		d.args = []string{d.body}
		return d
	}
	d.body = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(inner[i+1:]), ")"))
	depth, start := 0, 0
	for j := 0; j <= len(d.body); j++ {
		if j < len(d.body) {
			switch d.body[j] {
			case '(', '[', '<':
				depth++
				continue
			case ')', ']', '>':
				depth--
				continue
			case ',':
				if depth > 0 {
					continue
				}
			default:
				continue
			}
		}
		if arg := strings.TrimSpace(d.body[start:j]); arg != "" {
			d.args = append(d.args, arg)
		}
		start = j + 1
	}
	return d
}

func hasCfgTest(s symbols.Symbol) bool {
	for _, a := range s.Attributes {
		if d := parseAttr(a); d.name == "cfg" && d.body == "test" {
			return true
		}
	}
	return false
}

// how returns the mechanics sentence: a base sentence for the kind followed
// by one clause per recognized attribute, in declaration order.
func how(s symbols.Symbol) string {
	parts := []string{baseHow(s)}
	for _, a := range s.Attributes {
		parts = append(parts, attrClauses(parseAttr(a))...)
	}
	return strings.Join(parts, " ")
}

func baseHow(s symbols.Symbol) string {
	switch s.Kind {
	case symbols.KindTypeRecord:
		switch {
		case len(s.Fields) == 0:
			return fmt.Sprintf("%s carries no fields, so values of it take up no memory.", s.Name)
		case s.IsTuple:
			return fmt.Sprintf("%s is a tuple struct whose %d %s are accessed by position.", s.Name, len(s.Fields), plural(len(s.Fields), "field is", "fields are"))
		}
		return fmt.Sprintf("%s stores %s side by side in one value.", s.Name, list(fieldNames(s)))

	case symbols.KindSumType:
		if len(s.Variants) == 0 {
			return fmt.Sprintf("%s has no variants, so no value of it can ever exist.", s.Name)
		}
		if fieldless(s) {
			return fmt.Sprintf("Each of the %d variants is fieldless, so a value is stored as just its discriminant, a small integer tag.", len(s.Variants))
		}
		return fmt.Sprintf("A value holds a tag naming one of the %d variants plus that variant's data; match expressions must handle every variant.", len(s.Variants))

	case symbols.KindCapabilityContract:
		required, provided := 0, 0
		for _, m := range s.Methods {
			if m.HasBody {
				provided++
			} else {
				required++
			}
		}
		text := fmt.Sprintf("Implementors must supply %d %s", required, plural(required, "method", "methods"))
		if provided > 0 {
			text += fmt.Sprintf(" and inherit %d default %s", provided, plural(provided, "implementation", "implementations"))
		}
		text += "."
		if len(s.Supertraits) > 0 {
			text += fmt.Sprintf(" Implementing it also requires %s.", list(s.Supertraits))
		}
		return text

	case symbols.KindContractBinding:
		if len(s.Methods) == 0 {
			if s.TraitImpl != "" {
				return fmt.Sprintf("An empty impl that opts %s into %s using only the contract's defaults.", s.Name, s.TraitImpl)
			}
			return fmt.Sprintf("An empty impl block for %s.", s.Name)
		}
		if s.TraitImpl != "" {
			return fmt.Sprintf("Supplies %s for %s so it can be used anywhere %s is expected.", list(methodNames(s)), s.Name, s.TraitImpl)
		}
		return fmt.Sprintf("Defines %s as methods callable on %s values.", list(methodNames(s)), s.Name)

	case symbols.KindCallable:
		text := fmt.Sprintf("Takes %d %s", len(s.Params), plural(len(s.Params), "parameter", "parameters"))
		if s.ReturnType != "" {
			text += " and returns " + s.ReturnType
		}
		text += "."
		if s.IsAsync {
			text += " It is async, so calling it yields a future that must be awaited."
		}
		if len(s.Params) > 0 && s.Params[0].IsSelf {
			switch s.Params[0].Receiver {
			case symbols.ReceiverExclusive:
				text += " It borrows self mutably."
			case symbols.ReceiverShared:
				text += " It borrows self immutably."
			case symbols.ReceiverOwned:
				text += " It consumes self."
			}
		}
		return text

	case symbols.KindConstant:
		return fmt.Sprintf("The value is a compile-time constant of type %s, inlined at every use site.", valueType(s))

	case symbols.KindGlobalMutable:
		if s.IsMut {
			return fmt.Sprintf("A single %s lives at a fixed address for the whole program and can be modified in place.", valueType(s))
		}
		return fmt.Sprintf("A single %s lives at a fixed address for the whole program.", valueType(s))

	case symbols.KindTypeAlias:
		if s.AliasOf == "" {
			return fmt.Sprintf("%s is declared without a definition here.", s.Name)
		}
		return fmt.Sprintf("%s is interchangeable with %s; no new type is created.", s.Name, s.AliasOf)

	case symbols.KindNamespace:
		return fmt.Sprintf("Items inside are reached through the %s:: path and stay private to it unless marked pub.", s.Name)

	case symbols.KindTaggedUnion:
		return fmt.Sprintf("All %d fields overlap in the same storage; reading one interprets the bytes last written through another.", len(s.Fields))

	case symbols.KindMacroDef:
		return "Invocations are matched against the macro's rules and expanded into code before type checking."

	case symbols.KindImport:
		if s.Target != "" && s.Target != s.Name {
			return fmt.Sprintf("Resolves %s at compile time; it has no runtime cost.", s.Target)
		}
		return "Resolved at compile time; it has no runtime cost."
	}
	return fmt.Sprintf("%s is declared here.", s.Name)
}

func valueType(s symbols.Symbol) string {
	if s.ValueType == "" {
		return "value"
	}
	return s.ValueType
}

var deriveClauses = map[string]string{
	"Debug":       "Debug formatting is derived.",
	"Clone":       "Clone is derived, copying every field.",
	"Copy":        "Copy is derived, so values are duplicated bit for bit instead of moved.",
	"PartialEq":   "Equality is derived field by field.",
	"Eq":          "Eq is derived, promising equality is reflexive.",
	"PartialOrd":  "Ordering is derived in declaration order.",
	"Ord":         "A total ordering is derived in declaration order.",
	"Hash":        "Hash is derived, so it can key hash maps.",
	"Default":     "Default is derived from each field's default.",
	"Serialize":   "Serialization is derived.",
	"Deserialize": "Deserialization is derived.",
	"Error":       "The error implementation is derived.",
	"Parser":      "Command-line parsing is derived.",
	"Subcommand":  "Subcommand parsing is derived.",
	"EnumIter":    "Iteration over variants is derived.",
	"Display":     "Display formatting is derived.",
}

var intReprs = map[string]bool{
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
}

// attrClauses returns the clauses contributed by one attribute. Unknown
// attributes contribute nothing.
func attrClauses(d directive) []string {
	switch d.name {
	case "derive":
		var out []string
		for _, a := range d.args {
			base := symbols.BaseName(a)
			if c, ok := deriveClauses[base]; ok {
				out = append(out, c)
			} else if base != "" {
				out = append(out, fmt.Sprintf("%s is derived.", base))
			}
		}
		return out
	case "repr":
		var out []string
		for _, a := range d.args {
			switch {
			case a == "C":
				out = append(out, "Fields use C-compatible layout and order.")
			case a == "transparent":
				out = append(out, "It has exactly the layout of its single non-zero-sized field.")
			case strings.HasPrefix(a, "packed"):
				out = append(out, "Fields are packed without padding, so references to them may be unaligned.")
			case strings.HasPrefix(a, "align"):
				out = append(out, fmt.Sprintf("Alignment is raised with %s.", a))
			case intReprs[a]:
				out = append(out, fmt.Sprintf("The discriminant is stored as a %s.", a))
			default:
				out = append(out, fmt.Sprintf("Layout follows repr(%s).", a))
			}
		}
		return out
	case "non_exhaustive":
		return []string{"It is non-exhaustive, so other crates must allow for members added later."}
	case "must_use":
		return []string{"Ignoring its result triggers a compiler warning."}
	case "inline":
		switch d.body {
		case "always":
			return []string{"The compiler is asked to always inline it."}
		case "never":
			return []string{"The compiler is told never to inline it."}
		}
		return []string{"It is a candidate for inlining across crates."}
	case "test":
		return []string{"It runs only under the test harness."}
	case "cfg":
		if d.body == "test" {
			return []string{"It is compiled only in test builds."}
		}
		return []string{fmt.Sprintf("It is compiled only when %s holds.", d.body)}
	case "deprecated":
		return []string{"It is deprecated, so uses produce a warning."}
	case "tokio::main", "async_std::main", "actix_web::main":
		return []string{"An async runtime is started and blocks on the body."}
	case "tokio::test":
		return []string{"It runs as an async test on its own runtime."}
	case "no_mangle":
		return []string{"Its symbol name is kept unmangled for linking from other languages."}
	case "serde":
		return []string{fmt.Sprintf("Serialization is customized with %s.", d.body)}
	}
	return nil
}
