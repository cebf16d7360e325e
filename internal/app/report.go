package app

import (
	"github.com/pkg/errors"

	"github.com/edward-yakop/go-vidfetch/internal/core"
	"github.com/edward-yakop/go-vidfetch/internal/job"
)

func (app *VidApp) reportItemErrors(itemErrs []error) {
	for _, err := range itemErrs {
		var fieldErr *job.EmptyFieldError
		if errors.As(err, &fieldErr) {
			app.printf("Input Error for video %d: %s\n", fieldErr.Index, fieldErr)
			continue
		}
		app.printf("Input Error: %s\n", err)
	}
}

// reportFatal prints the guidance for an input error that stops the whole run. The
// error is only passed on in strict mode, unless reading the input itself failed.
func (app *VidApp) reportFatal(err error) error {
	switch {
	case errors.Is(err, job.ErrInvalidCount):
		app.printf("Value Error: Invalid input format - %s\n", err)
		app.printf("Expected format: First line should be a positive integer (number of videos)\n")
		app.printf("Then for each video: URL line followed by video name line\n")
	case errors.Is(err, job.ErrUnexpectedEOF):
		app.printf("EOF Error: Unexpected end of input\n")
		app.printf("Make sure you provide the correct number of URL and name pairs\n")
	default:
		return err
	}

	if app.option.Strict {
		return err
	}
	return nil
}

func (app *VidApp) reportDownloadError(j job.Job, err error) {
	var dlErr *core.DownloadError
	if !errors.As(err, &dlErr) {
		dlErr = &core.DownloadError{Kind: core.KindUnexpected, URL: j.URL, Err: err}
	}
	log.Trace("%s: %v", j.Name, err)

	switch dlErr.Kind {
	case core.KindHTTP:
		app.printf("\nHTTP Error for [%s]: %d - %s\n", j.Name, dlErr.StatusCode, dlErr.Reason)
		app.printf("URL: %s\n", dlErr.URL)
	case core.KindURL:
		app.printf("\nURL Error for [%s]: %s\n", j.Name, dlErr.Detail())
		app.printf("URL: %s\n", dlErr.URL)
	case core.KindPermission:
		app.printf("\nPermission Error for [%s]: Cannot write to %s\n", j.Name, dlErr.Path)
		app.printf("Error details: %s\n", dlErr.Detail())
	case core.KindOS:
		app.printf("\nOS Error for [%s]: %s\n", j.Name, dlErr.Detail())
		app.printf("Failed to save file to %s\n", dlErr.Path)
	default:
		app.printf("\nUnexpected error occurred while downloading [%s]\n", j.Name)
		app.printf("Error type: %s\n", dlErr.TypeName())
		app.printf("Error details: %s\n", dlErr.Detail())
	}
}
