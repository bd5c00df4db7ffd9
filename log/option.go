package log

// Option is a functional configuration option accepted by [Make],
// [Logger.Wrap], and [Config]. Each option returns the modified config so they compose
// left to right, later options overriding earlier ones.
type Option func(config) config

// apply folds opts over cfg in order.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}
