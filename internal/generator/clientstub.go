package generator

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"specsync/internal/config"
)

// KindClientStub identifies the generated Go client stub artifact.
const KindClientStub = "client-stub"

const clientStubTemplate = `// Code generated by specsync. DO NOT EDIT.
//
// Client stub for {{ .ServiceName }}{{ if .Title }} ({{ .Title }}{{ if .Version }} {{ .Version }}{{ end }}){{ end }}.
// Descriptor hash: {{ .Hash }}

package {{ .Package }}

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Client calls the {{ .ServiceName }} service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a Client against the configured base address.
func New() *Client {
	return &Client{
		BaseURL:    {{ printf "%q" .BaseURL }},
		HTTPClient: http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("{{ .ServiceName }}: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
{{ range .Operations }}
// {{ .MethodName }} calls {{ .Method }} {{ .Path }}.{{ if .Summary }}
// {{ .Summary }}{{ end }}
func (c *Client) {{ .MethodName }}(ctx context.Context) ([]byte, error) {
	return c.do(ctx, {{ printf "%q" .Method }}, {{ printf "%q" .Path }})
}
{{ end }}`

type clientStubOperation struct {
	MethodName string
	Method     string
	Path       string
	Summary    string
}

type clientStubData struct {
	ServiceName string
	Package     string
	BaseURL     string
	Title       string
	Version     string
	Hash        string
	Operations  []clientStubOperation
}

// ClientStub renders a Go client stub for a service descriptor.
type ClientStub struct {
	tmpl *template.Template
}

// NewClientStub creates the client-stub strategy.
func NewClientStub() *ClientStub {
	return &ClientStub{
		tmpl: template.Must(template.New(KindClientStub).Parse(clientStubTemplate)),
	}
}

// Kind implements Generator.
func (g *ClientStub) Kind() string { return KindClientStub }

// Filename implements Generator.
func (g *ClientStub) Filename(svc config.Service) string {
	return packageName(svc.Name) + "_client.go"
}

// Generate implements Generator. Operations arrive pre-sorted from
// ParseDescriptor, so output ordering is stable.
func (g *ClientStub) Generate(input Input) ([]byte, error) {
	data := clientStubData{
		ServiceName: input.Service.Name,
		Package:     packageName(input.Service.Name),
		BaseURL:     input.Service.BaseURL,
		Title:       input.Descriptor.Title,
		Version:     input.Descriptor.Version,
		Hash:        input.Hash,
	}

	seen := make(map[string]int)
	for _, op := range input.Descriptor.Operations {
		name := exportedName(op.OperationID)
		// Descriptors occasionally reuse operation ids; suffix duplicates
		// rather than emitting colliding methods.
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s%d", name, n)
		}
		data.Operations = append(data.Operations, clientStubOperation{
			MethodName: name,
			Method:     op.Method,
			Path:       op.Path,
			Summary:    op.Summary,
		})
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render client stub: %w", err)
	}
	return buf.Bytes(), nil
}

func packageName(service string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(service) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "client"
	}
	return b.String()
}

func exportedName(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	if b.Len() == 0 {
		return "Call"
	}
	return b.String()
}

var _ Generator = (*ClientStub)(nil)
