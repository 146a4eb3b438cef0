package main

import (
	"fmt"
	"strings"
	"time"
)

// ANSI escape codes
const (
	clearLine = "\033[2K"
	moveUp    = "\033[%dA"
	reset     = "\033[0m"
	yellow    = "\033[33m"
	red       = "\033[31m"
	green     = "\033[32m"
	cyan      = "\033[36m"
	bold      = "\033[1m"
)

const bannerWidth = 62

var logo = []string{
	"      ____          _      _      _                         ",
	"     / ___|_      _(_)_ __(_) ___| | __                     ",
	"     \\___ \\ \\ /\\ / / | '_ \\ |/ __| |/ /                     ",
	"      ___) \\ V  V /| | |_) | | (__|   <                      ",
	"     |____/ \\_/\\_/ |_| .__/|_|\\___|_|\\_\\                     ",
	"                     |_|                                    ",
}

// pad right-pads s with spaces to width runes
func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// pitchFrame draws the ball at col on a pitch line ending in a goal mouth
func pitchFrame(col int) string {
	const goal = "]|"
	field := bannerWidth - len(goal)
	if col > field-1 {
		col = field - 1
	}
	return strings.Repeat(" ", col) + "o" + strings.Repeat(" ", field-col-1) + goal
}

// showStartupAnimation displays the Swipick logo, then a ball rolling into the net
func showStartupAnimation(skipKickoff bool) {
	border := strings.Repeat("═", bannerWidth)

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Printf("  %s║%s%s%s║%s\n", cyan, green, pad(line, bannerWidth), cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)

	if skipKickoff {
		fmt.Print("\n")
		return
	}

	// Turn the bottom border into a divider and add the pitch line
	fmt.Printf(moveUp, 1)
	fmt.Printf("%s  %s╠%s╣%s\n", clearLine, cyan, border, reset)
	fmt.Printf("  %s║%s%s║%s\n", cyan, pitchFrame(0), cyan, reset)
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)

	for col := 0; col < bannerWidth-2; col += 4 {
		fmt.Printf(moveUp, 2)
		fmt.Printf("%s  %s║%s%s%s║%s\n", clearLine, cyan, yellow, pitchFrame(col), cyan, reset)
		fmt.Printf("%s  %s╚%s╝%s\n", clearLine, cyan, border, reset)
		time.Sleep(40 * time.Millisecond)
	}

	fmt.Printf(moveUp, 2)
	fmt.Printf("%s  %s║%s%s%s║%s\n", clearLine, cyan, bold+red, pad("  GOL!", bannerWidth), cyan, reset)
	fmt.Printf("%s  %s╚%s╝%s\n\n", clearLine, cyan, border, reset)
}
