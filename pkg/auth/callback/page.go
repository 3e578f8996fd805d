package callback

import (
	"bytes"
	_ "embed"
	"html"
	"html/template"
)

//go:embed page.html.tmpl
var pageTemplateText string

var pageTemplate = template.Must(template.New("page").Parse(pageTemplateText))

const (
	// DefaultSuccessTitle is shown after a successful callback.
	DefaultSuccessTitle = "Login Successful"
	// DefaultSuccessContent is the body shown after a successful callback.
	DefaultSuccessContent = "<p>You have successfully authenticated.</p><p>You can close this window and return to the CLI.</p>"

	failedTitle       = "Login Failed"
	invalidStateTitle = "Invalid State"

	invalidStateContent = `
      <p>The authentication state does not match. This may indicate a security issue.</p>
      <p>Please close this window and try logging in again.</p>`
)

type pageData struct {
	Title        string
	Content      template.HTML
	IsError      bool
	HeadingColor template.CSS
}

// RenderPage renders the result page. The title is escaped; content is trusted markup.
func RenderPage(title, content string, isError bool) string {
	data := pageData{
		Title:        title,
		Content:      template.HTML(content), //nolint:gosec // content is built from constants and escaped values.
		IsError:      isError,
		HeadingColor: template.CSS("#ffffff"),
	}
	if isError {
		data.HeadingColor = template.CSS("#FD5750")
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return html.EscapeString(title)
	}
	return buf.String()
}

func errorContent(providerError string) string {
	return `
      <p class="error-detail">An error was received: <strong>` + html.EscapeString(providerError) + `</strong></p>
      <p>This may be due to insufficient permissions, expired credentials, or a misconfiguration.</p>
      <p>Please check your permissions, ensure your credentials are valid, and try again.</p>`
}
