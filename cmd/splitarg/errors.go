package main

import (
	"errors"
	"log/slog"

	"go.jacobcolvin.com/splitarg/splitter"
)

func newLoggerFrom(h slog.Handler) *slog.Logger {
	return slog.New(h)
}

// splitError unwraps err looking for a *splitter.Error, returning its kind,
// implicated option name (if any), and message for structured logging.
func splitError(err error) (kind splitter.Kind, optionName, message string, ok bool) {
	var se *splitter.Error
	if !errors.As(err, &se) {
		return 0, "", "", false
	}

	if se.OptionSet {
		optionName = se.Option.PrimaryName()
	}

	return se.Kind, optionName, se.Message, true
}
