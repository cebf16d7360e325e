package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/edward-yakop/go-vidfetch/internal/core"
	"github.com/edward-yakop/go-vidfetch/internal/job"
	"github.com/edward-yakop/go-vidfetch/internal/misc"
	"github.com/edward-yakop/go-vidfetch/internal/progress"
)

const defaultExt = ".mp4"

var (
	log = misc.NewLogger("App", 2)

	// ErrInterrupted is returned when the run context is cancelled.
	ErrInterrupted = errors.New("download interrupted by user")
	// ErrJobsFailed is returned in strict mode when at least one download failed.
	ErrJobsFailed = errors.New("one or more downloads failed")
)

type ArgsList struct {
	Verbose bool
	Strict  bool
	Input   string
	Output  string
	Ext     string
}

// VidApp downloads every job of a job list, one after the other
//
type VidApp struct {
	option     AppOption
	downloader core.Downloader
	stdin      io.Reader
	out        io.Writer
}

// AppOption download options
//
type AppOption struct {
	Input  string
	Folder string
	Ext    string
	Strict bool
}

// ParseOption parse input command line
//
func ParseOption(args ArgsList) (*AppOption, error) {
	var err error
	opt := AppOption{
		Input:  args.Input,
		Strict: args.Strict,
	}

	if opt.Input == "" {
		opt.Input = misc.StdinName
	}
	if opt.Input != misc.StdinName && !misc.IsFileExists(opt.Input) {
		err = fmt.Errorf("input file [%s] not found", opt.Input)
		return nil, err
	}

	// check extension
	{
		ext := strings.TrimSpace(args.Ext)
		if strings.ContainsAny(ext, `/\`) {
			err = fmt.Errorf("invalid extension [%s]", args.Ext)
			return nil, err
		}
		if ext == "" {
			ext = defaultExt
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		opt.Ext = ext
	}

	if args.Output != "" {
		if opt.Folder, err = filepath.Abs(args.Output); err != nil {
			err = errors.Wrap(err, "invalid destination folder")
			return nil, err
		}
	}

	return &opt, nil
}

// NewApp create an application instance reading jobs from stdin (unless the option
// names a file) and writing its report to out
//
func NewApp(opt *AppOption, stdin io.Reader, out io.Writer) *VidApp {
	return &VidApp{
		option:     *opt,
		downloader: core.NewDownloader(),
		stdin:      stdin,
		out:        out,
	}
}

// Destination is the file a job with the given save name is written to.
func (app *VidApp) Destination(name string) string {
	if app.option.Folder == "" {
		return name + app.option.Ext
	}
	return filepath.Join(app.option.Folder, name+app.option.Ext)
}

// Execute reads the job list and downloads every valid job in order. Problems with
// single jobs are reported and skipped; they only surface as an error in strict mode.
//
func (app *VidApp) Execute(ctx context.Context) error {
	startTime := time.Now()

	in, err := misc.OpenInput(app.option.Input, app.stdin)
	if err != nil {
		return err
	}
	defer func(in io.ReadCloser) {
		_ = in.Close()
	}(in)

	jobs, itemErrs, err := job.Parse(in)
	app.reportItemErrors(itemErrs)
	if err != nil {
		return app.reportFatal(err)
	}
	if ctx.Err() != nil {
		return ErrInterrupted
	}

	if len(jobs) == 0 {
		app.printf("No valid videos to download\n")
		return nil
	}

	var (
		failed  int
		written int64
	)
	app.printf("\nStarting download of %d video(s)...\n\n", len(jobs))
	for i, j := range jobs {
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		app.printf("\n[Video %d/%d]\n", i+1, len(jobs))

		size, err := app.download(ctx, j)
		if err != nil {
			if ctx.Err() != nil {
				return ErrInterrupted
			}
			failed++
			app.reportDownloadError(j, err)
			continue
		}
		written += size
	}
	app.printf("\n\nAll downloads completed!\n")

	log.Info("Downloaded %d of %d video(s), %s written. Time cost: %v.",
		len(jobs)-failed, len(jobs), humanize.IBytes(uint64(written)), time.Since(startTime))

	if failed > 0 && app.option.Strict {
		return errors.Wrapf(ErrJobsFailed, "%d of %d", failed, len(jobs))
	}
	return nil
}

func (app *VidApp) download(ctx context.Context, j job.Job) (int64, error) {
	path := app.Destination(j.Name)

	created, err := core.PrepareDestination(j.URL, path)
	if err != nil {
		return 0, err
	}
	if created != "" {
		app.printf("Created directory: %s\n", created)
	}

	app.printf("\nDownloading [%s]...\n", j.Name)
	result, err := app.downloader.Download(ctx, j.URL, path, core.ProgressFunc(progress.Printer(app.out)))
	if err != nil {
		return result.Size, err
	}

	app.printf("\n[%s] is stored in [%s]\n", j.Name, result.Path)
	return result.Size, nil
}

func (app *VidApp) printf(format string, v ...interface{}) {
	_, _ = fmt.Fprintf(app.out, format, v...)
}

// Run wires stdin and stdout, used by the command line entry point.
func Run(ctx context.Context, opt *AppOption) error {
	return NewApp(opt, os.Stdin, os.Stdout).Execute(ctx)
}
