package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/reqlog/pkg/logging"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog/format"
)

const maxRenderInput = 1 << 20

type renderOptions struct {
	template    string
	obfuscate   []string
	placeholder string
	fields      bool
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render an access-log template against JSON metadata",
		Long: `Render an access-log template against metadata read as JSON from a file or
stdin. Input may hold one object or one object per line. Redaction paths are
applied before rendering, as the middleware does.

Examples:
  echo '{"method":"GET","url":"/","status-code":200}' | reqlogd render --format ":method :url :status-code"
  reqlogd render --obfuscate body.password --format ":body" meta.json
  reqlogd render --fields --format ":method :res-headers[content-length]"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.fields {
				for _, name := range format.Parse(opts.template).Fields() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return render(in, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "format", "f", format.DefaultTemplate, "template to render")
	cmd.Flags().StringSliceVar(&opts.obfuscate, "obfuscate", nil, "redaction paths applied before rendering")
	cmd.Flags().StringVar(&opts.placeholder, "placeholder", logging.DefaultPlaceholder, "replacement for redacted values")
	cmd.Flags().BoolVar(&opts.fields, "fields", false, "list the fields the template references and exit")
	return cmd
}

// render decodes a stream of JSON objects and writes one rendered line per
// object.
func render(in io.Reader, out io.Writer, opts renderOptions) error {
	if len(opts.obfuscate) > 0 && opts.placeholder == "" {
		return fmt.Errorf("%w: placeholder cannot be empty", reqlog.ErrInvalidConfig)
	}
	data, err := io.ReadAll(io.LimitReader(in, maxRenderInput+1))
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}
	if len(data) > maxRenderInput {
		return fmt.Errorf("metadata too large (max %d bytes)", maxRenderInput)
	}

	tmpl := format.Compile(opts.template)
	filter := reqlog.NewFilter(nil, opts.obfuscate, opts.placeholder, nil)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	for n := 1; ; n++ {
		var meta reqlog.Fields
		if err := dec.Decode(&meta); err != nil {
			if errors.Is(err, io.EOF) {
				if n == 1 && strings.TrimSpace(string(data)) == "" {
					return fmt.Errorf("no metadata objects in input")
				}
				return nil
			}
			return fmt.Errorf("decoding metadata object %d: %w", n, err)
		}
		if _, err := fmt.Fprintln(out, tmpl(filter.Redact(meta))); err != nil {
			return err
		}
	}
}
