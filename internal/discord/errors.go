package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// restError exposes the HTTP status of a failed REST call so the dispatcher
// can tell throttling and server errors from permanent failures.
type restError struct {
	err *discordgo.RESTError
}

func (e *restError) Error() string { return e.err.Error() }
func (e *restError) Unwrap() error { return e.err }

func (e *restError) StatusCode() int {
	if e.err.Response == nil {
		return 0
	}
	return e.err.Response.StatusCode
}

func wrapErr(err error) error {
	var re *discordgo.RESTError
	if errors.As(err, &re) {
		return &restError{err: re}
	}
	return err
}
