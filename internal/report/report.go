// Package report writes the outcome of a branch selection to stdout.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/pullfrom/internal/config"
	"git.home.luguber.info/inful/pullfrom/internal/foundation/errors"
	"git.home.luguber.info/inful/pullfrom/internal/selector"
)

// Printer renders a selection in one of the configured output formats.
// In text mode it also acts as the selector's Observer so branch groups
// are printed as soon as they are known.
type Printer struct {
	w         io.Writer
	format    config.OutputFormat
	highlight *color.Color
}

// Option customizes a Printer.
type Option func(*Printer)

// WithColor forces highlighting on or off. By default fatih/color decides
// based on whether stdout is a terminal.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		if enabled {
			p.highlight.EnableColor()
		} else {
			p.highlight.DisableColor()
		}
	}
}

// New returns a Printer writing to w.
func New(w io.Writer, format config.OutputFormat, opts ...Option) *Printer {
	if format == "" {
		format = config.OutputText
	}
	p := &Printer{
		w:         w,
		format:    format,
		highlight: color.New(color.FgGreen, color.Bold),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Observer returns the hook to hand to the selector. Only text output
// prints the intermediate branch lists.
func (p *Printer) Observer() selector.Observer {
	if p.format == config.OutputText {
		return p
	}
	return quiet{}
}

// BranchesListed prints every branch of the repository.
func (p *Printer) BranchesListed(names []string) { p.list("Branches", names) }

// ReleasesFound prints the release branches.
func (p *Printer) ReleasesFound(names []string) { p.list("Releases", names) }

// HotfixesFound prints the hotfix branches.
func (p *Printer) HotfixesFound(names []string) { p.list("Hotfixes", names) }

func (p *Printer) list(label string, names []string) {
	_, _ = fmt.Fprintf(p.w, "%s: %s\n", label, strings.Join(names, ", "))
}

// Summary is the JSON document written by the json format.
type Summary struct {
	Repository string    `json:"repository"`
	Branch     string    `json:"branch"`
	Kind       string    `json:"kind"`
	Ref        string    `json:"ref"`
	SHA        string    `json:"sha"`
	Date       time.Time `json:"date"`
	Since      time.Time `json:"since"`
}

// Summarize converts a selection result into its JSON form.
func Summarize(res *selector.Result) Summary {
	return Summary{
		Repository: res.Repository.String(),
		Branch:     res.Candidate.Branch,
		Kind:       string(res.Candidate.Kind),
		Ref:        Ref(res.Candidate.Branch),
		SHA:        res.Candidate.SHA,
		Date:       res.Candidate.Date.UTC(),
		Since:      res.Since.UTC(),
	}
}

// Ref returns the fully qualified reference of a branch.
func Ref(branch string) string {
	return plumbing.NewBranchReferenceName(branch).String()
}

// Result writes the chosen branch.
func (p *Printer) Result(res *selector.Result) error {
	if res == nil {
		return errors.InternalError("no selection to report").Build()
	}

	var err error
	branch := res.Candidate.Branch
	switch p.format {
	case config.OutputText:
		_, err = fmt.Fprintf(p.w, "Pull from %s\n", p.highlight.Sprint(branch))
	case config.OutputName:
		_, err = fmt.Fprintln(p.w, branch)
	case config.OutputRef:
		_, err = fmt.Fprintln(p.w, Ref(branch))
	case config.OutputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		err = enc.Encode(Summarize(res))
	default:
		return errors.ValidationError("unsupported output format").
			WithContext("format", string(p.format)).
			Build()
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to write result").Build()
	}
	return nil
}

type quiet struct{}

func (quiet) BranchesListed([]string) {}
func (quiet) ReleasesFound([]string)  {}
func (quiet) HotfixesFound([]string)  {}
