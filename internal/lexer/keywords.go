package lexer

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var declarationKeywords = wordSet(
	"as", "async", "await", "const", "crate", "dyn", "enum", "extern", "fn", "impl",
	"let", "mod", "move", "mut", "pub", "ref", "static", "struct", "super", "trait",
	"type", "union", "unsafe", "use", "where",
)

var controlFlowKeywords = wordSet(
	"break", "continue", "else", "for", "if", "in", "loop", "match", "return",
	"while", "yield",
)

var builtinTypes = wordSet(
	"i8", "i16", "i32", "i64", "i128", "isize",
	"u8", "u16", "u32", "u64", "u128", "usize",
	"f32", "f64", "bool", "char", "str",
	"String", "Vec", "Option", "Result", "Box", "Rc", "Arc", "Weak",
	"Cell", "RefCell", "Mutex", "RwLock", "HashMap", "HashSet",
	"BTreeMap", "BTreeSet", "VecDeque", "BinaryHeap", "PhantomData", "Pin",
)

var builtinNames = wordSet(
	"Some", "None", "Ok", "Err", "true", "false",
	"Clone", "Copy", "Debug", "Default", "Display", "Drop", "Eq", "PartialEq",
	"Ord", "PartialOrd", "Hash", "Iterator", "IntoIterator", "From", "Into",
	"TryFrom", "TryInto", "AsRef", "AsMut", "Deref", "DerefMut", "Send", "Sync",
	"Sized", "Fn", "FnMut", "FnOnce", "ToString", "Future",
)

var selfWords = wordSet("self", "Self")

// threeCharOps and twoCharOps are tried greedily before single characters.
var threeCharOps = []string{"<<=", ">>="}

var twoCharOps = []string{
	"==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=", "%=", "^=",
	"&=", "|=", "<<", ">>", "->", "=>",
}

const operatorChars = "+-*/%=<>!&|^?@~"
