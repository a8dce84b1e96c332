package app

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/keskad/zusi-go/pkgs/zpp"
)

// EraseZppAction erases the entire ZPP region.
func (a *Programmer) EraseZppAction(options ...ctxOptions) error {
	if err := a.initializeEngine(); err != nil {
		return err
	}
	ctx := defaultRequestContext()
	applyOptions(&ctx, options)

	runCtx, cancel := context.WithTimeout(context.Background(), ctx.timeout)
	defer cancel()

	err := a.measure("ZppErase", func() error { return a.engine.EraseZpp(runCtx) })
	a.record("ZppErase", 0, 0, err)
	return err
}

// WriteZppAction stages path off disk and writes it chunk by chunk starting
// at baseAddr. With watch set, it re-stages and re-writes the image every
// time the file changes, echoing the firmware back to the decoder as the
// developer edits it.
func (a *Programmer) WriteZppAction(path string, baseAddr uint32, watch bool, options ...ctxOptions) error {
	if !watch {
		return a.writeZppOnce(path, baseAddr, options)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot watch %s: %s", path, err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("cannot watch %s: %s", path, err)
	}

	if err := a.writeZppOnce(path, baseAddr, options); err != nil {
		a.P.Printf("write failed: %s\n", err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logrus.Debugf("%s changed, re-staging", path)
			if err := a.writeZppOnce(path, baseAddr, options); err != nil {
				a.P.Printf("write failed: %s\n", err)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.Errorf("watch error: %s", watchErr)
		}
	}
}

func (a *Programmer) writeZppOnce(path string, baseAddr uint32, options []ctxOptions) error {
	if err := a.initializeEngine(); err != nil {
		return err
	}
	ctx := defaultRequestContext()
	applyOptions(&ctx, options)

	image, err := zpp.Stage(afero.NewOsFs(), path, baseAddr)
	if err != nil {
		return err
	}

	a.P.Printf("staged %s (%s) into %d chunk(s)\n", path, humanize.Bytes(uint64(chunkedSize(image))), len(image.Chunks))

	for _, chunk := range image.Chunks {
		runCtx, cancel := context.WithTimeout(context.Background(), ctx.timeout)
		writeErr := a.measure("ZppWrite", func() error { return a.engine.WriteZpp(runCtx, chunk.Addr, chunk.Data) })
		cancel()

		a.record("ZppWrite", chunk.Addr, chunk.CRC, writeErr)
		if writeErr != nil {
			return fmt.Errorf("writing chunk at %#x: %s", chunk.Addr, writeErr)
		}
	}
	return nil
}

func chunkedSize(image *zpp.Image) int {
	total := 0
	for _, c := range image.Chunks {
		total += len(c.Data)
	}
	return total
}
