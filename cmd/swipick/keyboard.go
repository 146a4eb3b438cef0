package main

import (
	"context"
	"fmt"
	"io"

	"github.com/abrezinsky/swipick/internal/browser"
	"github.com/abrezinsky/swipick/internal/logger"
)

// keyboard maps single key presses to server actions
type keyboard struct {
	nextURL string
	log     logger.Logger
	out     io.Writer
	quit    context.CancelFunc

	// open defaults to browser.Open
	open func(url string) error
}

// handle runs the action bound to key and reports whether to stop listening
func (k *keyboard) handle(key byte) bool {
	switch key {
	case 'o', 'O':
		fmt.Fprintf(k.out, "%sOpening next fixtures in browser...%s\n", cyan, reset)
		open := k.open
		if open == nil {
			open = browser.Open
		}
		if err := open(k.nextURL); err != nil {
			fmt.Fprintf(k.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case 'h', 'H':
		if k.log.IsHTTPLoggingEnabled() {
			k.log.DisableHTTPLogging()
			fmt.Fprintf(k.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			k.log.EnableHTTPLogging()
			fmt.Fprintf(k.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case 'l', 'L':
		next := cycleLogLevel(k.log)
		fmt.Fprintf(k.out, "%sLog level: %s%s%s\n", green, yellow, next, reset)
	case '?':
		fmt.Fprint(k.out, keyboardHelp())
	case 'q', 'Q', 0x03: // 0x03 is Ctrl+C in raw mode
		fmt.Fprintf(k.out, "%sShutting down server...%s\n", yellow, reset)
		k.quit()
		return true
	}
	return false
}

// cycleLogLevel cycles debug -> info -> warn -> error and returns the new level
func cycleLogLevel(log logger.Logger) string {
	var next string
	switch log.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	default:
		next = "debug"
	}
	log.SetLevel(logger.ParseLevel(next))
	return next
}

func keyboardHelp() string {
	return fmt.Sprintf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset) +
		fmt.Sprintf("    %so%s      - Open next fixtures in browser\n", cyan, reset) +
		fmt.Sprintf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset) +
		fmt.Sprintf("    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset) +
		fmt.Sprintf("    %sq%s      - Quit server\n", cyan, reset) +
		fmt.Sprintf("    %s?%s      - Show this help\n\n", cyan, reset)
}

func printKeyboardHelp() {
	fmt.Print(keyboardHelp())
}

// readKeys feeds bytes from in to handle until it asks to stop or in fails
func (k *keyboard) readKeys(in io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return
		}
		if n == 1 && k.handle(buf[0]) {
			return
		}
	}
}
