// Package router maps each sinner command to its prompt, sampling
// temperature and output shape, and runs one command end to end:
// render the prompt, make one inference call, normalize the reply.
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sinner-cli/sinner/internal/format"
	"github.com/sinner-cli/sinner/internal/llm"
	"github.com/sinner-cli/sinner/internal/prompts"
)

// Command names one of the supported generation tasks.
type Command string

const (
	Name    Command = "name"
	Commit  Command = "commit"
	Comment Command = "comment"
	PR      Command = "pr"
	Squash  Command = "squash"
	Explain Command = "explain"
)

// Options carries command-specific flags. Keys a command does not
// recognize are ignored.
type Options map[string]string

// Route is everything needed to run one command.
type Route struct {
	Command      Command
	Template     func(prompts.Payload) string
	Temperature  float64
	Shape        format.Shape
	SplitCommits bool // input is a newline-separated list of commit subjects
}

// routes is the single command table. Order is the order commands are
// listed to users.
var routes = []Route{
	{Command: Name, Template: prompts.Name, Temperature: 0.7, Shape: format.ShapeLine},
	{Command: Commit, Template: prompts.Commit, Temperature: 0.5, Shape: format.ShapeLine},
	{Command: Comment, Template: commentTemplate, Temperature: 0.6, Shape: format.ShapeText, SplitCommits: true},
	{Command: PR, Template: prompts.PR, Temperature: 0.6, Shape: format.ShapeTitleBullets, SplitCommits: true},
	{Command: Squash, Template: prompts.Squash, Temperature: 0.5, Shape: format.ShapeLine, SplitCommits: true},
	{Command: Explain, Template: prompts.Explain, Temperature: 0.7, Shape: format.ShapeText},
}

func commentTemplate(p prompts.Payload) string {
	if strings.EqualFold(strings.TrimSpace(p.Options["casual"]), "true") {
		return prompts.CasualComment(p)
	}
	return prompts.Comment(p)
}

// UnsupportedCommandError is returned for a command outside the table.
type UnsupportedCommandError struct {
	Command   string
	Supported []string
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("unsupported command %q (supported: %s)", e.Command, strings.Join(e.Supported, ", "))
}

// Result is a finished run along with what produced it.
type Result struct {
	Command  Command
	Output   string
	Raw      string
	Provider string
	Model    string
	Duration time.Duration
	Route    Route
}

// Router dispatches commands to the inference client. It holds no state
// between runs and is safe for concurrent use.
type Router struct {
	client    llm.Client
	formatter *format.Formatter
	log       *zap.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithFormatter replaces the default output formatter.
func WithFormatter(f *format.Formatter) Option {
	return func(r *Router) {
		if f != nil {
			r.formatter = f
		}
	}
}

// WithLogger sets the logger used for debug tracing of runs.
func WithLogger(log *zap.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Router that sends prompts to client.
func New(client llm.Client, opts ...Option) *Router {
	r := &Router{
		client:    client,
		formatter: format.Default(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd against input and returns the formatted output.
func (r *Router) Run(ctx context.Context, cmd Command, input string, opts Options) (string, error) {
	res, err := r.Execute(ctx, cmd, input, opts)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Execute is Run with provenance, for callers that record history.
func (r *Router) Execute(ctx context.Context, cmd Command, input string, opts Options) (*Result, error) {
	route, err := Lookup(cmd)
	if err != nil {
		return nil, err
	}

	payload := prompts.Payload{Options: opts}
	if route.SplitCommits {
		payload.Commits = SplitCommits(input)
	} else {
		payload.Text = input
	}
	prompt := route.Template(payload)

	start := time.Now()
	resp, err := r.client.Complete(ctx, prompt, route.Temperature)
	elapsed := time.Since(start)
	if err != nil {
		r.log.Debug("run failed",
			zap.String("command", string(route.Command)),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return nil, err
	}

	raw := ""
	res := &Result{Command: route.Command, Duration: elapsed, Route: route}
	if resp != nil {
		raw = resp.Content
		res.Provider = resp.Provider
		res.Model = resp.Model
	}
	res.Raw = raw
	res.Output = r.formatter.Apply(route.Shape, raw)

	r.log.Debug("run complete",
		zap.String("command", string(route.Command)),
		zap.Float64("temperature", route.Temperature),
		zap.String("shape", route.Shape.String()),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Int("commits", len(payload.Commits)),
		zap.Duration("duration", elapsed))

	return res, nil
}

// Lookup returns the route for cmd after trimming and lower-casing it.
func Lookup(cmd Command) (Route, error) {
	key := Command(strings.ToLower(strings.TrimSpace(string(cmd))))
	for _, rt := range routes {
		if rt.Command == key {
			return rt, nil
		}
	}
	return Route{}, &UnsupportedCommandError{Command: string(cmd), Supported: Supported()}
}

// Routes returns a copy of the command table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Supported lists command names in table order.
func Supported() []string {
	names := make([]string, len(routes))
	for i, rt := range routes {
		names[i] = string(rt.Command)
	}
	return names
}

// SplitCommits turns newline-separated commit subjects into a list,
// dropping blank lines. Empty input gives an empty, non-nil slice.
func SplitCommits(input string) []string {
	commits := []string{}
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" {
			continue
		}
		commits = append(commits, line)
	}
	return commits
}
