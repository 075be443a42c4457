package morse

// SymbolSetSize is the number of supported characters.
const SymbolSetSize = 36

// letters and digits, indexed A..Z then 0..9.
var symbolSet = [SymbolSetSize]Symbol{
	".-", "-...", "-.-.", "-..", ".", "..-.", "--.", "....", "..",
	".---", "-.-", ".-..", "--", "-.", "---", ".--.", "--.-", ".-.",
	"...", "-", "..-", "...-", ".--", "-..-", "-.--", "--..",
	"-----", ".----", "..---", "...--", "....-",
	".....", "-....", "--...", "---..", "----.",
}

// Lookup returns the symbol of a supported character.
// The second return value is false for anything outside A-Z, a-z and 0-9.
func Lookup(c rune) (Symbol, bool) {
	if index := tableIndex(c); index >= 0 {
		return symbolSet[index], true
	}
	return "", false
}

// Supported indicates c has a symbol.
func Supported(c rune) bool {
	return tableIndex(c) >= 0
}

func tableIndex(c rune) int {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A')
	case c >= 'a' && c <= 'z':
		return int(c - 'a')
	case c >= '0' && c <= '9':
		return int(c-'0') + 26
	}
	return -1
}
