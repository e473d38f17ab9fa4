package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config      *Config
	query       string
	rebuildOnly bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithQuery runs a single query and exits instead of starting the
// interactive loop.
func WithQuery(query string) Option {
	return func(a *application) {
		a.query = query
	}
}

// WithRebuildOnly rebuilds the index and exits.
func WithRebuildOnly() Option {
	return func(a *application) {
		a.rebuildOnly = true
	}
}
