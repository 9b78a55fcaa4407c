// Command ts7200sim boots the microkernel core against a user-supplied
// first task, the Go analogue of the boot monitor handing control to
// kmain on real TS-7200 hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	microkernel "github.com/ts7200/microkernel"
	"github.com/ts7200/microkernel/internal/logging"
	"github.com/ts7200/microkernel/internal/nameserver"
	ksyscall "github.com/ts7200/microkernel/internal/syscall"
)

func main() {
	var (
		verbose    = flag.Bool("v", false, "verbose logging")
		tableSize  = flag.Int("table-size", microkernel.DefaultTaskTableCapacity, "task table capacity")
		tickPeriod = flag.Duration("tick", 10*time.Millisecond, "portable tick period (ignored under -tags giouring)")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	cfg := microkernel.DefaultConfig()
	cfg.TaskTableCapacity = *tableSize
	cfg.TickPeriod = *tickPeriod
	cfg.Source = newInterruptSource(*tickPeriod)

	k := microkernel.New(cfg)
	if err := k.Bootstrap(demoFirstTask); err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	installStackDumpHandler(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	status, err := k.Run(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Error("kernel run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("kernel exited", "status", status)
	os.Exit(status)
}

// demoFirstTask registers itself with the name server and prints its
// own tid, standing in for whatever real first user task a caller
// would substitute (this binary has no train-specific payload of its
// own — the core doesn't know about trains).
func demoFirstTask(ctx *ksyscall.Context) {
	nameserver.RegisterAs(ctx, "first-task")
	fmt.Printf("first user task running as tid %d\n", ctx.MyTid())
	ctx.Shutdown(0)
}

func installStackDumpHandler(logger *logging.Logger) {
	stackDumpCh := make(chan os.Signal, 1)
	signal.Notify(stackDumpCh, syscall.SIGUSR1)
	go func() {
		for range stackDumpCh {
			buf := make([]byte, 1<<20)
			n := runtime.Stack(buf, true)
			fmt.Fprintf(os.Stderr, "=== GOROUTINE STACK DUMP ===\n%s\n", buf[:n])
			pprof.Lookup("goroutine").WriteTo(os.Stderr, 2)
		}
	}()
}
