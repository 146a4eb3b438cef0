package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

var defaultCommander Commander = RealCommander{}

// Open opens an http(s) URL in the default browser
func Open(rawURL string) error {
	return OpenWithCommander(rawURL, defaultCommander, runtime.GOOS)
}

// OpenWithCommander opens the URL using the specified commander and OS.
// Only absolute http and https URLs are handed to the OS launcher.
func OpenWithCommander(rawURL string, commander Commander, goos string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("refusing to open %q: not an http(s) url", rawURL)
	}

	name, args, err := launcher(goos)
	if err != nil {
		return err
	}
	return commander.Start(name, append(args, u.String())...)
}

func launcher(goos string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", nil, nil
	case "darwin":
		return "open", nil, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
