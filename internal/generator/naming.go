package generator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ClassName derives a model class name from a table name: the name is split
// on underscores and whitespace, each word gets an upper-case first letter
// with the rest left as is, and the words are joined.
//
//	ClassName("user_accounts") == "UserAccounts"
//	ClassName("order")         == "Order"
//	ClassName("API_keys")      == "APIKeys"
//	ClassName("my table")      == "MyTable"
func ClassName(table string) string {
	upper := cases.Upper(language.Und)

	var b strings.Builder
	for _, word := range strings.FieldsFunc(table, isWordBreak) {
		r, size := utf8.DecodeRuneInString(word)
		b.WriteString(upper.String(string(r)))
		b.WriteString(word[size:])
	}
	return b.String()
}

func isWordBreak(r rune) bool {
	return r == '_' || unicode.IsSpace(r)
}

// baseName returns the unqualified name of a PHP class, e.g. "Model" for
// `Illuminate\Database\Eloquent\Model`.
func baseName(class string) string {
	if i := strings.LastIndex(class, `\`); i >= 0 {
		return class[i+1:]
	}
	return class
}

// phpString renders s as a single-quoted PHP string literal.
func phpString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// phpList renders items as a short-syntax PHP array of string literals.
func phpList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = phpString(it)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
