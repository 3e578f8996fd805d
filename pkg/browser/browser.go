package browser

import (
	"fmt"
	"io"

	pkgbrowser "github.com/pkg/browser"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

// Opener opens URLs in the user's browser.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

// Open implements Opener.
func (f OpenerFunc) Open(url string) error {
	return f(url)
}

// SystemOpener opens URLs with the platform browser launcher.
type SystemOpener struct{}

// NewSystemOpener returns an opener that silences the launcher's own output.
func NewSystemOpener() *SystemOpener {
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
	return &SystemOpener{}
}

// Open implements Opener.
func (o *SystemOpener) Open(url string) error {
	if err := pkgbrowser.OpenURL(url); err != nil {
		return fmt.Errorf("%w: %w", errUtils.ErrBrowserOpen, err)
	}
	return nil
}

const manualURLMessage = "Please copy and paste the following URL into your browser to continue login:"

// OpenOrPrint opens url and falls back to printing it to w when the browser cannot be launched.
// It reports whether the browser was opened.
func OpenOrPrint(o Opener, w io.Writer, url string) bool {
	log.Debug("Opening browser", "url", url)
	if err := o.Open(url); err != nil {
		log.Error("Failed to open browser automatically", "error", err)
		fmt.Fprintf(w, "%s\n%s\n", manualURLMessage, url)
		return false
	}
	return true
}
