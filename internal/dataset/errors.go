package dataset

// ConfigError reports an invalid pipeline setting (bad split
// proportion, undersized class, malformed table). It is fatal at setup
// and aborts the run.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "dataset: " + e.Reason }
