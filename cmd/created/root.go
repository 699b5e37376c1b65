package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/globalsign/mgo/bson"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/icza/created"
	"github.com/icza/created/conn"
	"github.com/icza/created/internal/logging"
	"github.com/icza/created/plantree"
)

// envPrefix is the prefix of the configuration environment variables.
const envPrefix = "CREATED"

// options holds the query flags.
type options struct {
	since, to string
	limit     int
	fields    []string
	cursor    bool
	explain   bool
	keep      []string
	indexOnly bool
}

func newRootCmd() *cobra.Command {
	var (
		opts       options
		configFile string
		url        string
		logLevel   string
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "created <collection>",
		Short: "List documents by creation time",
		Long: `List the documents of a collection ordered by createdAt ascending,
optionally bounded by creation time. Results are printed as JSON: an array,
one document per line with --cursor, or the query plan with --explain.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.NewWithComponent(logging.Config{
				Level:  logLevel,
				Pretty: pretty,
				Output: cmd.ErrOrStderr(),
			}, "created")

			cfg, err := conn.LoadConfig(envPrefix, configFile)
			if err != nil {
				return err
			}
			if url != "" {
				cfg.URL = url
			}

			c := conn.New(cfg, log)
			defer c.Close()

			return run(cmd.Context(), opts, c, args[0], cmd.OutOrStdout(), log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.since, "since", "", "list documents created at or after `DATE`")
	f.StringVar(&opts.to, "to", "", "list documents created at or before `DATE`")
	f.IntVarP(&opts.limit, "limit", "n", 0, "max number of documents, 0 means no limit")
	f.StringSliceVar(&opts.fields, "select", nil, "fields to include, or to exclude if prefixed with '-'")
	f.BoolVar(&opts.cursor, "cursor", false, "stream documents, one per line")
	f.BoolVar(&opts.explain, "explain", false, "print the query plan instead of the documents")
	f.StringSliceVar(&opts.keep, "keep", nil, "keep only the plan branches containing these keys")
	f.BoolVar(&opts.indexOnly, "index-only", false, "keep only the index usage of the plan")
	f.StringVar(&configFile, "config", "", "config file")
	f.StringVar(&url, "url", "", "MongoDB URL, overrides the configuration")
	f.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.BoolVar(&pretty, "pretty", false, "human-readable logs")

	return cmd
}

// run executes the query described by opts against the named collection,
// and writes the result to out.
func run(ctx context.Context, opts options, r created.Resolver, coll string, out io.Writer, log zerolog.Logger) error {
	p, err := parseProjection(opts.fields)
	if err != nil {
		return err
	}

	q := created.New[bson.M](r).Logger(log).
		Since(opts.since).
		To(opts.to).
		Take(opts.limit).
		Select(p)
	if opts.cursor {
		q.Cursor()
	}
	if opts.explain {
		keep := opts.keep
		if opts.indexOnly {
			keep = append(keep, plantree.IndexKeys...)
		}
		q.Explain(keep...)
	}

	res, err := q.Run(ctx, coll)
	if err != nil {
		return err
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	switch res.Mode {
	case created.ModeExplain:
		enc.SetIndent("", "  ")
		return enc.Encode(res.Plan)

	case created.ModeCursor:
		n := 0
		for {
			var doc bson.M
			if !res.Cursor.Next(&doc) {
				break
			}
			if err := enc.Encode(doc); err != nil {
				res.Cursor.Close()
				return err
			}
			n++
		}
		log.Debug().Int("docs", n).Msg("streamed")
		return res.Cursor.Close()

	default:
		docs := res.Docs
		if docs == nil {
			docs = []bson.M{}
		}
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}
}

// parseProjection parses --select fields: "name" or "+name" includes,
// "-name" excludes a field.
func parseProjection(fields []string) (created.Projection, error) {
	p := created.Projection{}
	for _, arg := range fields {
		field, inc := strings.TrimSpace(arg), created.Include
		switch {
		case strings.HasPrefix(field, "-"):
			inc, field = created.Exclude, field[1:]
		case strings.HasPrefix(field, "+"):
			field = field[1:]
		}
		if field == "" {
			return nil, fmt.Errorf("invalid select field %q", arg)
		}
		p[field] = inc
	}
	return p, nil
}
