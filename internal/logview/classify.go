package logview

import (
	"regexp"
	"strconv"
	"strings"
)

// Class is the color tag assigned to a log line.
type Class string

const (
	ClassRed     Class = "ansi-red"
	ClassGreen   Class = "ansi-green"
	ClassYellow  Class = "ansi-yellow"
	ClassBlue    Class = "ansi-blue"
	ClassMagenta Class = "ansi-magenta"
	ClassCyan    Class = "ansi-cyan"
	ClassWhite   Class = "ansi-white"
)

// DefaultClass applies to lines with no color sequence.
const DefaultClass = ClassWhite

var codeClasses = map[int]Class{
	31: ClassRed,
	32: ClassGreen,
	33: ClassYellow,
	34: ClassBlue,
	35: ClassMagenta,
	36: ClassCyan,
	37: ClassWhite,
}

// sgrPattern matches "[" params "m" and the text that follows it up to the
// next "[", newline or end of string. Params need at least two fields.
var sgrPattern = regexp.MustCompile(`\[(\d+(?:;\d+)+)m([^\[\n]*)`)

// Classify returns the color class for a raw console line. Matches are folded
// left to right; each recognized code replaces the class, an unrecognized one
// keeps whatever the earlier matches chose.
func Classify(line string) Class {
	class := DefaultClass
	for _, m := range sgrPattern.FindAllStringSubmatch(line, -1) {
		class = foldCode(class, m[1])
	}
	return class
}

func foldCode(prev Class, params string) Class {
	fields := strings.Split(params, ";")
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return prev
	}
	if c, ok := codeClasses[code]; ok {
		return c
	}
	return prev
}

// CodeFor returns the SGR color code for c, or 0 when c is not a known class.
func CodeFor(c Class) int {
	for code, class := range codeClasses {
		if class == c {
			return code
		}
	}
	return 0
}
