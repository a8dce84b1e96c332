package app

import (
	"context"

	"github.com/keskad/zusi-go/pkgs/zusi"
)

// FeaturesAction reads the peer's feature vector and prints it as a hex
// dump.
func (a *Programmer) FeaturesAction(options ...ctxOptions) error {
	if err := a.initializeEngine(); err != nil {
		return err
	}
	ctx := defaultRequestContext()
	applyOptions(&ctx, options)

	runCtx, cancel := context.WithTimeout(context.Background(), ctx.timeout)
	defer cancel()

	var f zusi.Features
	err := a.measure("Features", func() error {
		v, err := a.engine.Features(runCtx)
		f = v
		return err
	})
	a.record("Features", 0, 0, err)
	if err != nil {
		return err
	}

	if dumper, ok := a.P.(interface{ DumpBytes(string, []byte) }); ok {
		dumper.DumpBytes("features", f[:])
		return nil
	}
	a.P.Printf("% X\n", f[:])
	return nil
}

// ExitAction leaves the peer's load mode.
func (a *Programmer) ExitAction(flags uint8, options ...ctxOptions) error {
	if err := a.initializeEngine(); err != nil {
		return err
	}
	ctx := defaultRequestContext()
	applyOptions(&ctx, options)

	runCtx, cancel := context.WithTimeout(context.Background(), ctx.timeout)
	defer cancel()

	err := a.measure("Exit", func() error { return a.engine.Exit(runCtx, flags) })
	a.record("Exit", 0, flags, err)
	return err
}

// LcDcQueryAction asks the peer whether developerCode authorizes a ZPP
// LC/DC operation and prints the answer.
func (a *Programmer) LcDcQueryAction(developerCode [4]byte, options ...ctxOptions) error {
	if err := a.initializeEngine(); err != nil {
		return err
	}
	ctx := defaultRequestContext()
	applyOptions(&ctx, options)

	runCtx, cancel := context.WithTimeout(context.Background(), ctx.timeout)
	defer cancel()

	var ok bool
	err := a.measure("ZppLcDcQuery", func() error {
		v, err := a.engine.LcDcQuery(runCtx, developerCode)
		ok = v
		return err
	})
	a.record("ZppLcDcQuery", 0, 0, err)
	if err != nil {
		return err
	}

	if ok {
		a.P.Printf("authorized\n")
	} else {
		a.P.Printf("not authorized\n")
	}
	return nil
}
