package internal

import (
	"io"
	"os"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	stdin  io.Reader
	stdout io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStdio sets the streams used by the stdio transport (default os.Stdin/os.Stdout).
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(a *application) {
		a.stdin = in
		a.stdout = out
	}
}

func newApplication(opts ...Option) *application {
	app := &application{stdin: os.Stdin, stdout: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	return app
}
