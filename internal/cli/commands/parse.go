package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/babylog/pkg/config"
	"github.com/ccollicutt/babylog/pkg/output"
	"github.com/ccollicutt/babylog/pkg/parser"
	"github.com/ccollicutt/babylog/pkg/source"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Files    []string
	At       string
	Timezone string
	Config   string
	Output   string
	Verbose  bool
	Quiet    bool
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [message...]",
		Short: "Parse caregiver messages into events",
		Long: `Parse caregiver messages and print the events they describe.

Messages come from arguments (one message per argument), from files given
with --file (messages separated by a line containing only ---), or from
stdin when neither is given.

Clock times are resolved against the reference instant: --at when set,
otherwise the file modification time or the current time.

Exit codes:
  0 - All messages parsed cleanly
  1 - At least one message produced errors
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Files, "file", "f", nil, "Message file, directory or glob (can be repeated)")
	cmd.Flags().StringVar(&opts.At, "at", "", "Reference instant (RFC3339)")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "IANA timezone for clock times (overrides config)")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file for timezone and vocabulary")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-line classification")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadParseConfig(ctx, opts)
	if err != nil {
		return err
	}

	at, err := referenceTime(opts.At, cfg.Location())
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	sources, err := openSources(args, opts, at, cmd.InOrStdin())
	if err != nil {
		return err
	}

	p := parser.New(cfg.Vocabulary())
	w := cmd.OutOrStdout()
	problems := false

	for _, src := range sources {
		err := parseSource(ctx, src, p, cfg.Location(), formatter, w, &problems)
		_ = src.Close()
		if err != nil {
			return err
		}
	}

	if problems {
		ExitCode = 1
	}
	return nil
}

func parseSource(ctx context.Context, src source.MessageSource, p *parser.Parser, loc *time.Location,
	formatter output.Formatter, w io.Writer, problems *bool) error {
	for {
		msg, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading messages: %w", err)
		}

		ref := msg.ReceivedAt.In(loc)
		report := output.NewReport(p.Parse(msg.Text, ref), fmt.Sprintf("%s#%d", msg.Source, msg.Index), ref)
		if report.HasProblems() {
			*problems = true
		}
		if err := formatter.Format(ctx, report, w); err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}
	}
}

func loadParseConfig(ctx context.Context, opts *ParseOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.Config != "" {
		cfg, err = config.Load(ctx, opts.Config)
	} else {
		cfg, err = config.FromEnvironment()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.Timezone != "" {
		cfg.Timezone = opts.Timezone
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", opts.Timezone, err)
		}
	}
	return cfg, nil
}

// referenceTime parses --at, or returns the zero time when unset.
func referenceTime(at string, loc *time.Location) (time.Time, error) {
	if at == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q (use RFC3339, e.g. 2024-03-10T08:00:00Z): %w", at, err)
	}
	return t.In(loc), nil
}

func openSources(args []string, opts *ParseOptions, at time.Time, stdin io.Reader) ([]source.MessageSource, error) {
	now := at
	if now.IsZero() {
		now = time.Now()
	}

	var sources []source.MessageSource
	if len(args) > 0 {
		sources = append(sources, source.NewStringSource("args", now, args...))
	}

	if len(opts.Files) > 0 {
		files, err := source.ExpandGlobs(opts.Files)
		if err != nil {
			return nil, fmt.Errorf("expanding message files: %w", err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no message files matched patterns: %v", opts.Files)
		}
		var fileOpts []source.FileSourceOption
		if !at.IsZero() {
			fileOpts = append(fileOpts, source.WithReceivedAt(at))
		}
		sources = append(sources, source.NewFileSource(files, fileOpts...))
	}

	if len(sources) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil, errors.New("no messages given (pass text, --file, or pipe to stdin)")
		}
		sources = append(sources, source.NewStringSource("stdin", now, source.SplitMessages(string(data))...))
	}

	return sources, nil
}
