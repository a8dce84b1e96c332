// Package app is the controller layer: it turns a CLI invocation into a
// sequence of TX engine calls, everything needed to perform one action -
// read a CV, stage and write a ZPP image, query features - while keeping
// all output behind the Printer interface.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/keskad/zusi-go/pkgs/config"
	"github.com/keskad/zusi-go/pkgs/journal"
	"github.com/keskad/zusi-go/pkgs/metrics"
	"github.com/keskad/zusi-go/pkgs/output"
	"github.com/keskad/zusi-go/pkgs/periphhal"
	"github.com/keskad/zusi-go/pkgs/tx"
)

// Programmer is the controller for every TX-side action the CLI exposes.
type Programmer struct {
	Config *config.Configuration

	engine  *tx.Engine
	journal *journal.Journal
	metrics *metrics.Metrics

	session xid.ID

	// runtime parameters
	Debug bool
	P     output.Printer
}

// Initialize runs after argument parsing: it loads configuration, starts a
// session and wires the optional journal/metrics sinks. The bus is opened
// later, by initializeEngine, when an action runs.
func (a *Programmer) Initialize() error {
	if a.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.Debug("Reading configuration files")
	cfg, err := config.NewConfig()
	a.Config = cfg
	if err != nil {
		return fmt.Errorf("cannot initialize app: %s", err)
	}

	a.session = xid.New()

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("cannot open journal: %s", err)
		}
		a.journal = j
	}

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(prometheus.DefaultRegisterer)
	}

	return nil
}

func (a *Programmer) initializeEngine() error {
	logrus.Debug("Initializing bus")
	if a.Config.Bus.Driver != "periph" {
		return fmt.Errorf("unknown bus driver %q", a.Config.Bus.Driver)
	}
	bus, err := periphhal.Open(a.Config.Bus.ClockPin, a.Config.Bus.DataPin, a.Config.Bus.SPIPort)
	if err != nil {
		return fmt.Errorf("cannot initialize bus: %s", err)
	}
	a.engine = tx.NewEngine(bus)
	a.engine.Enter()
	return nil
}

// record appends one audit entry if a journal is configured.
func (a *Programmer) record(command string, addr uint32, value uint8, outcome error) {
	if a.journal == nil {
		return
	}
	status := "ok"
	if outcome != nil {
		status = outcome.Error()
	}
	_ = a.journal.Record(journal.Entry{
		ID:        uuid.New(),
		SessionID: a.session.String(),
		Command:   command,
		Addr:      addr,
		Value:     value,
		Outcome:   status,
		At:        time.Now(),
	})
}

// measure runs fn, timing how long it took, and routes the result to every
// metric that call's outcome touches: ObserveCommand always, plus
// ObserveAckWait for the elapsed time and ObserveCRCFailure/ObserveNak when
// fn's error is a tx.Error of the matching kind.
func (a *Programmer) measure(command string, fn func() error) error {
	start := time.Now()
	err := fn()
	a.observe(command, time.Since(start), err)
	return err
}

func (a *Programmer) observe(command string, elapsed time.Duration, outcome error) {
	if a.metrics == nil {
		return
	}
	status := "ok"
	if outcome != nil {
		status = "error"
	}
	a.metrics.ObserveCommand(command, status)
	a.metrics.ObserveAckWait(elapsed)

	var txErr *tx.Error
	if errors.As(outcome, &txErr) {
		switch txErr.Kind {
		case tx.BadMessage:
			a.metrics.ObserveCRCFailure()
		case tx.ProtocolError:
			a.metrics.ObserveNak()
		}
	}
}
