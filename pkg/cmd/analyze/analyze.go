package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/api"
	"github.com/mpapenbr/motorsport-analytics/pkg/cmd/util"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
	"github.com/mpapenbr/motorsport-analytics/pkg/sanitize"
)

type request struct {
	key      model.SessionKey
	session  string
	segments int
	drivers  []string
}

type runner func(ctx context.Context, a api.Analytics, req *request) (any, error)

var runners = map[string]runner{
	"stints": func(ctx context.Context, a api.Analytics, req *request) (any, error) {
		return a.Stints(ctx, req.key)
	},
	"laps": func(ctx context.Context, a api.Analytics, req *request) (any, error) {
		return a.AllLaps(ctx, req.key)
	},
	"speed-traps": func(ctx context.Context, a api.Analytics, req *request) (any, error) {
		return a.SpeedTraps(ctx, req.key)
	},
	"best-sectors": func(ctx context.Context, a api.Analytics, req *request) (any, error) {
		return a.BestSectors(ctx, req.key)
	},
	"minisectors": func(ctx context.Context, a api.Analytics, req *request) (any, error) {
		return a.Minisectors(ctx, req.key, req.segments)
	},
	"summary": func(ctx context.Context, a api.Analytics, req *request) (any, error) {
		return a.Summary(ctx, req.key)
	},
	"telemetry": func(ctx context.Context, a api.Analytics, req *request) (any, error) {
		switch len(req.drivers) {
		case 1:
			return a.Telemetry(ctx, req.key, req.drivers[0])
		case 2:
			return a.CompareTelemetry(ctx, req.key, req.drivers[0], req.drivers[1])
		default:
			return nil, &model.ValidationError{
				Field:  "driver",
				Reason: "telemetry requires one or two drivers",
			}
		}
	},
}

func metricNames() []string {
	names := lo.Keys(runners)
	slices.Sort(names)
	return names
}

func NewAnalyzeCmd() *cobra.Command {
	req := &request{}
	cmd := &cobra.Command{
		Use:   "analyze <metric>",
		Short: "computes one metric of a session and prints it as JSON",
		Long: fmt.Sprintf(`Computes a metric using the configured archive and result cache.
Cached results are reused, new results are stored. Useful for warming the cache.

Metrics: %s`, strings.Join(metricNames(), ", ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: metricNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args[0], req, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&req.key.Year, "year", 0, "season of the event")
	cmd.Flags().IntVar(&req.key.Round, "round", 0, "round of the event")
	cmd.Flags().StringVar(&req.session, "session", "R",
		"session identifier (FP1, FP2, FP3, Q, SQ, S, R)")
	cmd.Flags().IntVar(&req.segments, "segments", 0,
		"number of distance based minisectors (0 uses the sector boundaries)")
	cmd.Flags().StringSliceVar(&req.drivers, "driver", nil,
		"driver(s) for telemetry, two drivers are compared")
	return cmd
}

func runAnalyze(ctx context.Context, metric string, req *request, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := util.SetupLogger(); err != nil {
		return err
	}
	util.WaitForRequiredServices()
	backend, err := util.NewBackend()
	if err != nil {
		return err
	}
	defer backend.Close()
	return analyze(ctx, backend.Analytics, metric, req, out)
}

//nolint:whitespace // editor/linter issue
func analyze(
	ctx context.Context, a api.Analytics, metric string, req *request, out io.Writer,
) error {
	run, ok := runners[metric]
	if !ok {
		return &model.ValidationError{
			Field:  "metric",
			Reason: fmt.Sprintf("unknown metric %q (one of %s)",
				metric, strings.Join(metricNames(), ", ")),
		}
	}
	session, err := model.ParseSessionID(req.session)
	if err != nil {
		return err
	}
	req.key.Session = session
	if err := req.key.Validate(); err != nil {
		return err
	}
	log.Debug("Analyzing session",
		log.String("key", req.key.String()),
		log.String("metric", metric))
	result, err := run(log.AddToContext(ctx, log.Default()), a, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(sanitize.Clean(result))
}
