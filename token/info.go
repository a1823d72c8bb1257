package token

import "fortio.org/sets"

// Info enables introspection of known keywords and operators.
type JsiInfo struct {
	// Keywords is the set of all reserved words.
	Keywords sets.Set[string]
	// Tokens is the set of operator and punctuation spellings.
	Tokens sets.Set[string]
}

var info = JsiInfo{}

func Info() JsiInfo {
	return info
}
