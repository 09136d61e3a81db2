// Package cli implements the wneura command tree.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/wneura/internal/config"
	"github.com/danielpatrickdp/wneura/internal/state"
)

// Environment variables read when the matching flag is empty.
const (
	envDB   = "WNEURA_DB"
	envAddr = "WNEURA_ADDR"

	defaultAddr = "localhost:50551"
)

var errNoDB = errors.New("no database: pass --db or set " + envDB)

type rootOptions struct {
	dbPath     string
	configPath string
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "wneura",
		Short:        "Stress, agency and receptor-adaptation simulator",
		Long:         "Runs a value learner whose learning and exploration are modulated by simulated cortisol, agency and receptor tolerance.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.dbPath, "db", "d", "", "Database path (default: $"+envDB+"; empty disables persistence)")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Brain config JSON (default: built-in coefficients)")

	root.AddCommand(
		newRunCmd(opts),
		newTherapyCmd(opts),
		newLabCmd(opts),
		newExperimentCmd(opts),
		newConfigCmd(opts),
		newInspectCmd(opts),
		newReplayCmd(),
		newExportCmd(opts),
		newServeCmd(opts),
		newRemoteCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) getDBPath() string {
	if o.dbPath != "" {
		return o.dbPath
	}
	return os.Getenv(envDB)
}

// openStore returns nil, nil when no database is configured.
func (o *rootOptions) openStore() (*state.Store, error) {
	path := o.getDBPath()
	if path == "" {
		return nil, nil
	}
	s, err := state.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

func (o *rootOptions) requireStore() (*state.Store, error) {
	s, err := o.openStore()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errNoDB
	}
	return s, nil
}

func (o *rootOptions) brainConfig() config.BrainConfig {
	if o.configPath == "" {
		return config.Default()
	}
	return config.Load(o.configPath)
}

func addrOrEnv(addr string) string {
	if addr != "" {
		return addr
	}
	if env := os.Getenv(envAddr); env != "" {
		return env
	}
	return defaultAddr
}

func jsonBytes(v interface{}) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return b, nil
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := jsonBytes(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
