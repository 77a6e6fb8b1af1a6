package main

import (
	"fmt"
	"io"

	"vegan-agent-be/internal/dto"
	"vegan-agent-be/pkg/events"
	"vegan-agent-be/pkg/ingredient"
	"vegan-agent-be/pkg/verdict"

	"github.com/fatih/color"
)

type printer struct {
	w      io.Writer
	styles map[verdict.Style]*color.Color
	bold   *color.Color
	faint  *color.Color
}

func newPrinter(w io.Writer, useColor bool) *printer {
	p := &printer{
		w: w,
		styles: map[verdict.Style]*color.Color{
			verdict.StyleError:   color.New(color.FgRed, color.Bold),
			verdict.StyleSuccess: color.New(color.FgGreen, color.Bold),
			verdict.StyleWarning: color.New(color.FgYellow, color.Bold),
			verdict.StyleInfo:    color.New(color.FgBlue),
		},
		bold:  color.New(color.Bold),
		faint: color.New(color.Faint),
	}
	if !useColor {
		for _, c := range p.styles {
			c.DisableColor()
		}
		p.bold.DisableColor()
		p.faint.DisableColor()
	}
	return p
}

func (p *printer) banner(style verdict.Style, text string) {
	c, ok := p.styles[style]
	if !ok {
		c = p.styles[verdict.StyleInfo]
	}
	c.Fprintln(p.w, text)
}

// failureBanner styles a non-ok outcome: a failed remote call is an error,
// missing credentials and rejected input are warnings.
func failureBanner(resp *dto.ScanResponse) (verdict.Style, string) {
	msg := resp.Error
	if msg == "" {
		msg = string(resp.Status)
	}
	if resp.Status == dto.ScanStatusCallError {
		return verdict.StyleError, "Error: " + msg
	}
	return verdict.StyleWarning, msg
}

func (p *printer) result(resp *dto.ScanResponse) {
	if !resp.OK() {
		p.banner(failureBanner(resp))
		return
	}

	p.banner(resp.Verdict.Style, resp.Verdict.Text)

	if len(resp.Citations) > 0 {
		p.bold.Fprintln(p.w, "\nSources:")
		for _, c := range resp.Citations {
			title := c.Title
			if title == "" {
				title = c.URI
			}
			fmt.Fprintf(p.w, "  - %s (%s)\n", title, c.URI)
		}
	}

	if len(resp.LocalCheck) > 0 {
		p.bold.Fprintln(p.w, "\nLocal ingredient check:")
		for _, r := range resp.LocalCheck {
			fmt.Fprintf(p.w, "  %-24s %-12s %s\n", r.Ingredient, r.Status, r.Source)
		}
	}

	p.faint.Fprintf(p.w, "\n%s (via %s, %d tool calls)\n", resp.Disclaimer, resp.Provider, resp.ToolCalls)
}

func (p *printer) lookup(res *dto.LookupResponse) {
	if len(res.Results) == 0 {
		p.banner(verdict.StyleInfo, "No known ingredients matched.")
		return
	}
	for _, r := range res.Results {
		style := verdict.StyleSuccess
		switch {
		case r.Status == ingredient.StatusUnknown:
			style = verdict.StyleInfo
		case !r.IsVegan:
			style = verdict.StyleError
		}
		line := fmt.Sprintf("%-24s %-12s %s", r.Ingredient, r.Status, r.Source)
		if r.Risk != "" {
			line += fmt.Sprintf(" [%s risk]", r.Risk)
		}
		p.banner(style, line)
	}
}

func (p *printer) credential(st *dto.CredentialStatusResponse) {
	switch {
	case !st.Required:
		p.banner(verdict.StyleInfo, st.Provider+" needs no API key.")
	case !st.Found, !st.LooksValid:
		p.banner(verdict.StyleWarning, st.Message)
	default:
		p.banner(verdict.StyleSuccess, st.Message)
	}
	if st.Found {
		fmt.Fprintf(p.w, "  source: %s\n  prefix: %s\n", st.Source, st.Prefix)
	}
}

func (p *printer) event(evt events.Event) {
	d := evt.Payload()
	style := verdict.StyleInfo
	if v, ok := d["verdict"].(string); ok {
		style = verdict.StyleOf(verdict.Kind(v))
	}
	p.banner(style, fmt.Sprintf("%s %v %v %v %v (%vms)",
		evt.Timestamp().Format("15:04:05"), d["mode"], d["status"], d["verdict"], d["provider"], d["duration_ms"]))
}
