package cli

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Execute implements the go-flags Commander interface for OpenCommand.
// Positional arguments are accepted alongside repeated --url flags.
func (c *OpenCommand) Execute(args []string) error {
	urls := append([]string{}, c.URLs...)
	urls = append(urls, args...)
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given; pass them as arguments or with --url")
	}
	return openURLs(urls)
}

// openURLs hands each URL to the platform's default browser launcher.
func openURLs(urls []string) error {
	for _, u := range urls {
		if err := openURL(u); err != nil {
			return fmt.Errorf("open %s: %w", u, err)
		}
	}
	return nil
}

func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
