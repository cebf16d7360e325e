package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"unknwon.dev/clog/v2"

	"github.com/edward-yakop/go-vidfetch/internal/app"
	"github.com/edward-yakop/go-vidfetch/internal/misc"
)

const (
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	args := app.ArgsList{}
	flag.StringVar(&args.Input,
		"input", misc.StdinName,
		"job list file, - reads standard input (.xz and .lzma files are decompressed)")
	flag.StringVar(&args.Output,
		"output", "",
		"directory to save the videos in (default: working directory)")
	flag.StringVar(&args.Ext,
		"ext", ".mp4",
		"extension appended to every video name")
	flag.BoolVar(&args.Strict,
		"strict", false,
		"exit with a non-zero status when the input is invalid or a download fails")
	flag.BoolVar(&args.Verbose,
		"verbose", false,
		"verbose output trace log")
	flag.Parse()

	if err := setupLog(args.Verbose); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(exitFailure)
	}

	opt, err := app.ParseOption(args)
	if err != nil {
		fmt.Println("--------------------------------------------")
		fmt.Printf("Error: %s\n", err)
		fmt.Println("--------------------------------------------")
		fmt.Println("Usage:")
		flag.PrintDefaults()
		clog.Stop()
		os.Exit(exitUsage)
	}

	os.Exit(run(opt))
}

// setupLog logs everything from trace up in verbose runs, otherwise only warnings and
// errors so the progress output stays readable.
func setupLog(verbose bool) error {
	if verbose {
		return clog.NewConsole(0, clog.ConsoleConfig{
			Level: clog.LevelTrace,
		})
	}
	return clog.NewConsole(0, clog.ConsoleConfig{
		Level: clog.LevelWarn,
	})
}

func run(opt *app.AppOption) int {
	defer clog.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reading the job list blocks on stdin, so the run is watched from here to let an
	// interrupt end the program at any point.
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx, opt)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = app.ErrInterrupted
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrInterrupted):
		fmt.Println("\n\nDownload interrupted by user (Ctrl+C)")
		return exitInterrupted
	default:
		fmt.Printf("\nError: %s\n", err)
		return exitFailure
	}
}
