package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/internal/docs"
	"github.com/keshon/server-warden/pkg/cmd"
)

func main() {
	prefix := flag.String("prefix", "?", "command prefix shown in the reference")
	tmpl := flag.String("template", "README.md.tmpl", "README template")
	out := flag.String("out", "README.md", "generated README")
	flag.Parse()

	registry := cmd.NewRegistry()
	registry.Register(command.Builtins()...)

	if err := docs.UpdateReadme(registry, *prefix, *tmpl, *out); err != nil {
		log.Fatal().Err(err).Msg("failed to build README")
	}
	log.Info().Str("out", *out).Msg("README updated")
}
