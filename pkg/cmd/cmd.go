// Package cmd is the transport-agnostic command core. A command has a name,
// a description and a Run; adapters decide how it is invoked.
package cmd

import "context"

// Invocation is what an adapter hands to a command: the arguments after the
// command name and the adapter's own context in Data.
type Invocation struct {
	Args []string
	Data any
}

type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
