package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/desertthunder/listsync/internal/tasks"
	"github.com/desertthunder/listsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	left    services.Account
	right   services.Account
	decider tasks.Decider
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Left and Right are built from the configured credentials on first use when nil.
// Decider defaults to a terminal prompt on stdin.
type RunnerOpts struct {
	Config  *shared.Config
	Left    services.Account
	Right   services.Account
	Decider tasks.Decider
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		left:    opts.Left,
		right:   opts.Right,
		decider: opts.Decider,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, listsCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the file named by the command's config flag, falling back to the runner's config
// when the default path does not exist. The result is validated.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	config := r.config
	path := cmd.String("config")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := shared.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		} else if cmd.IsSet("config") {
			return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// accounts returns both sides of the sync, creating API clients from environment credentials if needed.
func (r *Runner) accounts(ctx context.Context, config *shared.Config) (services.Account, services.Account, error) {
	if r.left != nil && r.right != nil {
		return r.left, r.right, nil
	}

	if err := shared.LoadDotEnv(config.Sync.DotEnv); err != nil {
		r.logger.Warn("failed to load dotenv file", "path", config.Sync.DotEnv, "error", err)
	}

	bundles, err := shared.LoadAllCredentials(config.Accounts, nil)
	if err != nil {
		return nil, nil, err
	}

	clients := make([]services.Account, 0, len(bundles))
	for i, creds := range bundles {
		client, err := services.NewClient(ctx, services.ClientOpts{
			Label:       config.Accounts[i].Label,
			BaseURL:     config.API.BaseURL,
			Credentials: creds,
			RateLimit:   config.API.RateLimit,
			Burst:       config.API.Burst,
		})
		if err != nil {
			return nil, nil, err
		}
		clients = append(clients, client)
	}

	r.left, r.right = clients[0], clients[1]
	return r.left, r.right, nil
}

// interactiveDecider returns the injected decider or a prompt bound to the process terminal.
func (r *Runner) interactiveDecider() tasks.Decider {
	if r.decider != nil {
		return r.decider
	}
	return ui.NewDecider(os.Stdin, os.Stdout)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", ui.Styles().Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
