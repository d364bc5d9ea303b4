package logview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Class
	}{
		{"esp info", "\x1b[0;32mI (1500) bm1370Module: Job ID: 0a\x1b[0m", ClassGreen},
		{"esp error", "\x1b[0;31mE (11) asic: fault\x1b[0m", ClassRed},
		{"esp warn", "\x1b[0;33mW (12) stratum: slow\x1b[0m", ClassYellow},
		{"blue", "[1;34mblue", ClassBlue},
		{"magenta", "[0;35mmagenta", ClassMagenta},
		{"cyan", "[0;36mcyan", ClassCyan},
		{"white", "[0;37mwhite", ClassWhite},
		{"no escape", "D (1000) power_management: vin: 3 mV", ClassWhite},
		{"empty", "", ClassWhite},
		{"single param is not matched", "\x1b[31mred?", ClassWhite},
		{"bare reset", "text\x1b[0m", ClassWhite},
		{"three params use the second", "[1;33;40mwarn", ClassYellow},
		{"unknown first code", "[0;90mgrey", ClassWhite},
		{"malformed", "[;31m oops [a;b]m", ClassWhite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestClassify_LastMatchWins(t *testing.T) {
	for _, x := range []string{"0", "1", "22"} {
		for _, y := range []string{"0", "1", "7"} {
			line := "\x1b[" + x + ";31mfirst \x1b[" + y + ";32msecond"
			assert.Equal(t, ClassGreen, Classify(line), "line %q", line)
		}
	}
}

func TestClassify_UnrecognizedCodeKeepsPriorMatchClass(t *testing.T) {
	line := "\x1b[0;31mred part \x1b[0;90mgrey part"
	assert.Equal(t, ClassRed, Classify(line))

	line = "\x1b[0;34mblue \x1b[1;0mreset \x1b[0;99mnothing"
	assert.Equal(t, ClassBlue, Classify(line))
}

func TestClassify_MatchesStopAtNewline(t *testing.T) {
	line := "\x1b[0;32mok\n\x1b[0;31mfailed"
	assert.Equal(t, ClassRed, Classify(line))
}

func TestCodeFor(t *testing.T) {
	assert.Equal(t, 31, CodeFor(ClassRed))
	assert.Equal(t, 37, CodeFor(ClassWhite))
	assert.Equal(t, 0, CodeFor(Class("ansi-bold")))
}
