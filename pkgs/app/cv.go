package app

import (
	"context"
	"fmt"
	"time"

	"github.com/keskad/zusi-go/pkgs/syntax"
)

// WriteCVAction parses cvString (one or more "cvN=V" entries) and writes
// each in turn, optionally reading back and comparing after every write.
func (a *Programmer) WriteCVAction(cvString string, options ...ctxOptions) error {
	if err := a.initializeEngine(); err != nil {
		return err
	}

	ctx := defaultRequestContext()
	applyOptions(&ctx, options)

	entries, err := syntax.ParseCVString(cvString, ",")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		writeErr := a.writeOneCV(entry.Addr, entry.Value, ctx)
		a.record("CvWrite", entry.Addr, entry.Value, writeErr)
		if writeErr != nil {
			return writeErr
		}
		time.Sleep(ctx.settle)
	}
	return nil
}

func (a *Programmer) writeOneCV(addr uint32, value uint8, ctx RequestContext) error {
	runCtx, cancel := context.WithTimeout(context.Background(), ctx.timeout)
	defer cancel()

	if err := a.measure("CvWrite", func() error { return a.engine.WriteCV(runCtx, addr, value) }); err != nil {
		return fmt.Errorf("cannot write CV%d: %s", addr, err)
	}

	if !ctx.verify {
		return nil
	}
	time.Sleep(ctx.settle)
	got, err := a.readOneCV(addr, ctx)
	if err != nil {
		return fmt.Errorf("cannot verify CV%d was written: %s", addr, err)
	}
	if got != value {
		return fmt.Errorf("cv%d verify mismatch: wrote %d, read back %d", addr, value, got)
	}
	return nil
}

// ReadCVAction parses cvString and prints each value, retrying a failed read
// up to ctx.retries times.
func (a *Programmer) ReadCVAction(cvString string, options ...ctxOptions) error {
	if err := a.initializeEngine(); err != nil {
		return err
	}

	ctx := defaultRequestContext()
	applyOptions(&ctx, options)

	entries, err := syntax.ParseCVString(cvString, ",")
	if err != nil {
		return err
	}

	var lastErr error
	for _, entry := range entries {
		value, readErr := a.readOneCV(entry.Addr, ctx)
		a.record("CvRead", entry.Addr, value, readErr)

		if len(entries) > 1 {
			if readErr != nil {
				a.P.Printf("cv%d=ERROR\n", entry.Addr)
				lastErr = readErr
			} else {
				a.P.Printf("cv%d=%d\n", entry.Addr, value)
			}
			continue
		}
		if readErr != nil {
			return readErr
		}
		a.P.Printf("%d\n", value)
	}
	return lastErr
}

func (a *Programmer) readOneCV(addr uint32, ctx RequestContext) (uint8, error) {
	var lastErr error
	for attempt := uint8(0); attempt <= ctx.retries; attempt++ {
		runCtx, cancel := context.WithTimeout(context.Background(), ctx.timeout)
		var value uint8
		err := a.measure("CvRead", func() error {
			v, err := a.engine.ReadCV(runCtx, addr)
			value = v
			return err
		})
		cancel()
		if err == nil {
			return value, nil
		}
		lastErr = err
	}
	return 0, fmt.Errorf("cannot read CV%d: %s", addr, lastErr)
}
