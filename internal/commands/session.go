package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cleared-dev/acctree/internal/auditlog"
	"github.com/cleared-dev/acctree/internal/config"
	"github.com/cleared-dev/acctree/internal/logging"
	"github.com/cleared-dev/acctree/internal/metrics"
	"github.com/cleared-dev/acctree/internal/store/sqlstore"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	driver     string
	dsn        string
}

// loadConfig reads the config file (defaults when absent), applies the
// environment and then the command-line overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if o.driver != "" {
		cfg.Database.Driver = o.driver
	}
	if o.dsn != "" {
		cfg.Database.DSN = o.dsn
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is everything one command invocation holds open.
type session struct {
	command string
	cfg     *config.Config
	store   *sqlstore.Store
	runID   string
	metrics *metrics.Recorder
	audit   []auditlog.Entry
	logs    io.Closer
}

func openSession(ctx context.Context, opts *globalOptions, command string) (*session, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	logs := logging.Setup(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	s, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("opening %s database: %w", cfg.Database.Driver, err)
	}

	sess := &session{
		command: command,
		cfg:     cfg,
		store:   s,
		runID:   auditlog.NewRunID(),
		metrics: metrics.NewRecorder(command),
		logs:    logs,
	}
	slog.Debug("session opened", "command", command, "run_id", sess.runID, "driver", cfg.Database.Driver)
	return sess, nil
}

// record queues an audit entry; entries are written by close.
func (s *session) record(action, account, company, details string) {
	s.audit = append(s.audit, auditlog.Entry{
		Timestamp: time.Now(),
		RunID:     s.runID,
		Command:   s.command,
		Action:    action,
		Account:   account,
		Company:   company,
		Details:   details,
	})
}

// close flushes the audit log and metrics, then releases the store and log
// file. Uncommitted writes are discarded.
func (s *session) close(ok bool) error {
	var errs []error

	if s.cfg.Audit.Path != "" {
		if err := auditlog.Append(s.cfg.Audit.Path, s.audit); err != nil {
			errs = append(errs, err)
		}
	}

	s.metrics.Finish(ok)
	if err := s.metrics.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
		errs = append(errs, err)
	}

	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing database: %w", err))
	}
	if err := s.logs.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing log file: %w", err))
	}
	return errors.Join(errs...)
}
