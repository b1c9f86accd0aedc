package main

import (
	"fmt"
	"io"
	"strings"
)

// switchMode is the auto|on|off value shared by --color and --ui.
type switchMode string

const (
	switchAuto switchMode = "auto"
	switchOn   switchMode = "on"
	switchOff  switchMode = "off"
)

func parseSwitch(flag, value string) (switchMode, error) {
	switch m := switchMode(strings.ToLower(strings.TrimSpace(value))); m {
	case "":
		return switchAuto, nil
	case switchAuto, switchOn, switchOff:
		return m, nil
	}
	return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// resolve turns auto into "out is a terminal and allowed".
func (m switchMode) resolve(out io.Writer, allowed bool) bool {
	switch m {
	case switchOn:
		return true
	case switchOff:
		return false
	}
	return allowed && isTerminal(out)
}
