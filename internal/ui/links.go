package ui

import (
	"os/exec"
	"runtime"
)

// OpenURL opens url in the OS default browser. Failures are ignored; the
// URL is always printed as well.
func OpenURL(url string) {
	name, args := browserCommand(runtime.GOOS, url)
	_ = exec.Command(name, args...).Start()
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", url}
	default:
		return "xdg-open", []string{url}
	}
}

// Link renders an explorer link with a label.
func Link(label, url string) string {
	return StyleMeta.Render(label+": ") + StyleAddress.Underline(true).Render(url)
}
