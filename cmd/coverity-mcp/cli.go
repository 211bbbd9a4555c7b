package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/coverity-mcp/internal/config"
	"github.com/hpungsan/coverity-mcp/internal/coverity"
	"github.com/hpungsan/coverity-mcp/internal/errors"
	"github.com/hpungsan/coverity-mcp/internal/logging"
	"github.com/hpungsan/coverity-mcp/internal/mcp"
	"github.com/hpungsan/coverity-mcp/internal/registry"
	"github.com/hpungsan/coverity-mcp/internal/report"
)

// cliDeps are the seams between commands and the outside world.
type cliDeps struct {
	load      func(path string) (*config.Config, error)
	newClient func(cfg *config.Config, logger *slog.Logger) mcp.Querier
	serve     func(client mcp.Querier, cfg *config.Config, version string, logger *slog.Logger) error
}

func defaultDeps() cliDeps {
	return cliDeps{
		load: config.Load,
		newClient: func(cfg *config.Config, logger *slog.Logger) mcp.Querier {
			return coverity.New(cfg, coverity.WithLogger(logger))
		},
		serve: mcp.Run,
	}
}

// newCLIApp creates the CLI application with all commands. Without a
// command it serves MCP.
func newCLIApp(deps cliDeps) *cli.App {
	app := &cli.App{
		Name:    "coverity-mcp",
		Usage:   "Coverity Connect defect data over MCP",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Config file (default ~/.coverity-mcp/config.yaml)"},
		},
		Action: deps.serveAction,
		Commands: []*cli.Command{
			serveCmd(deps),
			projectsCmd(deps),
			streamsCmd(deps),
			issuesCmd(deps),
			issueCmd(deps),
			capabilitiesCmd(deps),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// loadConfig reads the config named by --config, or the default path.
func (d cliDeps) loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	return d.load(path)
}

// connect loads and validates config and builds a client. Missing
// connection settings are fatal here.
func (d cliDeps) connect(c *cli.Context) (mcp.Querier, *config.Config, *slog.Logger, error) {
	cfg, err := d.loadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	logger := logging.New(c.App.ErrWriter, cfg.LogLevel)
	return d.newClient(cfg, logger), cfg, logger, nil
}

func serveCmd(deps cliDeps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve MCP (default command)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "transport", Aliases: []string{"t"}, Usage: "stdio|http (overrides TRANSPORT)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP listen port (overrides PORT)"},
		},
		Action: deps.serveAction,
	}
}

func (d cliDeps) serveAction(c *cli.Context) error {
	cfg, err := d.loadConfig(c)
	if err != nil {
		return outputError(c, err)
	}
	if t := c.String("transport"); t != "" {
		cfg.Transport = t
	}
	if p := c.Int("port"); p != 0 {
		cfg.HTTPPort = p
	}
	if err := cfg.Validate(); err != nil {
		return outputError(c, err)
	}

	logger := logging.New(c.App.ErrWriter, cfg.LogLevel)
	logger.Info("starting", "version", Version, "transport", cfg.Transport, "host", cfg.Host)
	return d.serve(d.newClient(cfg, logger), cfg, Version, logger)
}

func projectsCmd(deps cliDeps) *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "List projects",
		Action: func(c *cli.Context) error {
			client, _, _, err := deps.connect(c)
			if err != nil {
				return outputError(c, err)
			}
			projects, err := client.ListProjects(c.Context)
			if err != nil {
				return outputError(c, err)
			}
			return outputJSON(c.App.Writer, mcp.ProjectSummaries(projects))
		},
	}
}

func streamsCmd(deps cliDeps) *cli.Command {
	return &cli.Command{
		Name:  "streams",
		Usage: "List streams, optionally for one project",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Usage: "Project name"},
		},
		Action: func(c *cli.Context) error {
			client, _, _, err := deps.connect(c)
			if err != nil {
				return outputError(c, err)
			}
			streams, err := client.ListStreams(c.Context, c.String("project"))
			if err != nil {
				return outputError(c, err)
			}
			return outputJSON(c.App.Writer, mcp.StreamSummaries(streams))
		},
	}
}

func issuesCmd(deps cliDeps) *cli.Command {
	return &cli.Command{
		Name:  "issues",
		Usage: "Search issues in a project",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Usage: "Project name", Required: true},
			&cli.StringFlag{Name: "checker", Usage: "Checker name"},
			&cli.StringFlag{Name: "impact", Usage: "High|Medium|Low"},
			&cli.StringFlag{Name: "status", Usage: "New|Triaged|Fixed|Dismissed"},
			&cli.Int64Flag{Name: "cid", Usage: "Single CID"},
			&cli.IntFlag{Name: "limit", Value: coverity.DefaultSearchLimit, Usage: "Maximum results (1-200)"},
			&cli.IntFlag{Name: "offset", Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			req := mcp.SearchIssuesRequest{
				Project: c.String("project"),
				Checker: c.String("checker"),
				Impact:  c.String("impact"),
				Status:  c.String("status"),
			}
			limit, offset := c.Int("limit"), c.Int("offset")
			req.Limit, req.Offset = &limit, &offset
			if c.IsSet("cid") {
				cid := c.Int64("cid")
				req.CID = &cid
			}
			project, filter, err := req.Filter()
			if err != nil {
				return outputError(c, err)
			}

			client, _, _, err := deps.connect(c)
			if err != nil {
				return outputError(c, err)
			}
			issues, err := client.SearchIssues(c.Context, project, filter)
			if err != nil {
				return outputError(c, err)
			}
			return outputJSON(c.App.Writer, mcp.IssueSummaries(issues))
		},
	}
}

func issueCmd(deps cliDeps) *cli.Command {
	return &cli.Command{
		Name:      "issue",
		Usage:     "Show one issue with its event trace and triage",
		ArgsUsage: "<cid>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "stream", Aliases: []string{"s"}, Usage: "Stream name", Required: true},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "json|markdown|html"},
		},
		Action: func(c *cli.Context) error {
			cid, err := strconv.ParseInt(c.Args().First(), 10, 64)
			if err != nil {
				return outputError(c, errors.NewInvalidRequest(fmt.Sprintf("cid must be an integer, got %q", c.Args().First())))
			}
			format := c.String("format")
			switch format {
			case "json", "markdown", "html":
			default:
				return outputError(c, errors.NewInvalidRequest(fmt.Sprintf("unknown format %q", format)))
			}

			client, _, _, err := deps.connect(c)
			if err != nil {
				return outputError(c, err)
			}
			stream := c.String("stream")
			detail := client.GetIssueDetails(c.Context, cid, stream)
			if detail == nil {
				return outputError(c, errors.NewNotFound(cid, stream))
			}

			switch format {
			case "markdown":
				_, err = io.WriteString(c.App.Writer, report.Markdown(detail))
				return err
			case "html":
				page, err := report.HTML(detail)
				if err != nil {
					return outputError(c, errors.NewInternal(err))
				}
				_, err = io.WriteString(c.App.Writer, page)
				return err
			default:
				return outputJSON(c.App.Writer, mcp.NewDetailView(detail))
			}
		},
	}
}

// capabilitiesCmd runs the registry against a recording host and prints
// what would be registered. No connection is made.
func capabilitiesCmd(deps cliDeps) *cli.Command {
	return &cli.Command{
		Name:  "capabilities",
		Usage: "Show the capability manifest and registry report",
		Action: func(c *cli.Context) error {
			cfg, err := deps.loadConfig(c)
			if err != nil {
				return outputError(c, err)
			}
			rec := registry.NewRecorder()
			h := mcp.NewHandlers(nil, cfg, nil)
			rep := registry.AutoLoad(rec, h.Manifest(), cfg.DisabledCapabilities, logging.Discard())

			return outputJSON(c.App.Writer, map[string]any{
				"report":     rep,
				"registered": rec.Names(),
			})
		},
	}
}

// Helper functions

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes err as JSON to stderr and returns an exit-1 error.
func outputError(c *cli.Context, err error) error {
	payload := map[string]any{"code": errors.ErrInternal, "message": err.Error()}
	var covErr *errors.CovError
	if stderrors.As(err, &covErr) {
		payload = map[string]any{"code": covErr.Code, "message": covErr.Message}
		if covErr.Code != errors.ErrInternal && covErr.Details != nil {
			payload["details"] = covErr.Details
		}
	}
	_ = outputJSON(c.App.ErrWriter, map[string]any{"error": payload})
	return cli.Exit("", 1)
}
