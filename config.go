package qsim

// Config tunes how an Engine spreads the per-ket transform.
type Config struct {
	// Workers is the number of goroutines transforming kets. 1 keeps the
	// engine single-threaded.
	Workers int

	// ParallelThreshold is the smallest state size, in kets, worth splitting
	// across workers.
	ParallelThreshold int
}

func NewConfig() *Config {
	return &Config{
		Workers:           1,
		ParallelThreshold: 1024,
	}
}

// normalized returns a copy with out-of-range values replaced by defaults.
func (c *Config) normalized() *Config {
	out := NewConfig()
	if c == nil {
		return out
	}

	if c.Workers > 0 {
		out.Workers = c.Workers
	}

	if c.ParallelThreshold > 0 {
		out.ParallelThreshold = c.ParallelThreshold
	}

	return out
}
