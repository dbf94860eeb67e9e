package pipeline

import "fmt"

// ProvisionDirs persists the configured metric list and ensures an output
// directory exists for each metric. Existing directories and their files
// are left alone.
func (r *Runner) ProvisionDirs() ([]string, error) {
	if err := r.lists.SaveMetrics(r.cfg.Metrics); err != nil {
		return nil, fmt.Errorf("save metric list: %w", err)
	}

	created, err := r.layout.Provision(r.cfg.Metrics)
	if err != nil {
		return created, fmt.Errorf("provision metric dirs: %w", err)
	}

	r.logger.Info("metric directories ready",
		"root", r.layout.Root(),
		"metrics", len(r.cfg.Metrics),
		"created", len(created),
	)
	return created, nil
}
