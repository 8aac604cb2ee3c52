package cron

import "context"

// Job is one unit of scheduled work run by the sweeper.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the jobs of a sweeper in registration order. Nil jobs are ignored.
type Registry struct {
	jobs []Job
}

func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

func (r *Registry) Register(job Job) {
	if job != nil {
		r.jobs = append(r.jobs, job)
	}
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}

// Names lists job names for startup logging.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name())
	}
	return names
}
