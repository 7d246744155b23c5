package main

import (
	"io"
	"os"
	"strings"
	"time"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Environ func() []string // KEY=VALUE pairs, as os.Environ
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Environ: os.Environ,
	}
}

// getenv returns the value of name from env.Environ.
func (env *Environment) getenv(name string) string {
	if env.Environ == nil {
		return ""
	}
	for _, kv := range env.Environ() {
		if v, ok := strings.CutPrefix(kv, name+"="); ok {
			return v
		}
	}
	return ""
}
