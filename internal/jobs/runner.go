package jobs

import (
	"context"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/filedock/backend/internal/filesystem"
	"github.com/filedock/backend/internal/infrastructure/logging"
)

// Task declares one scheduled archive job.
type Task struct {
	Name    string   `toml:"name"`
	Cron    string   `toml:"cron"`
	Action  string   `toml:"action"` // "compress" or "extract"
	Sources []string `toml:"sources,omitempty"`
	Source  string   `toml:"source,omitempty"`
	Dest    string   `toml:"dest"`
	Archive string   `toml:"archive,omitempty"`
}

// TaskFile is the on-disk schedule document.
type TaskFile struct {
	Tasks []Task `toml:"tasks"`
}

// LoadTasks reads scheduled tasks from a TOML file.
func LoadTasks(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file TaskFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("jobs: parse %s: %w", path, err)
	}
	return file.Tasks, nil
}

// Runner schedules recurring archive tasks on the host.
type Runner struct {
	host  *Host
	log   *logging.Logger
	cron  *cron.Cron
	tasks []Task
}

// NewRunner creates a runner for the given tasks.
func NewRunner(host *Host, log *logging.Logger, tasks []Task) *Runner {
	if log == nil {
		log = logging.NewDefault()
	}
	return &Runner{
		host:  host,
		log:   log,
		cron:  cron.New(),
		tasks: tasks,
	}
}

// Start registers every task with the scheduler and starts it.
func (r *Runner) Start() {
	for _, task := range r.tasks {
		task := task
		_, err := r.cron.AddFunc(task.Cron, func() {
			if err := r.run(task); err != nil {
				r.log.Error("scheduled task failed",
					zap.String("task", task.Name),
					zap.Error(err),
				)
			}
		})
		if err != nil {
			r.log.Error("failed to schedule task",
				zap.String("task", task.Name),
				zap.String("cron", task.Cron),
				zap.Error(err),
			)
			continue
		}
		r.log.Info("task scheduled",
			zap.String("task", task.Name),
			zap.String("cron", task.Cron),
		)
	}
	r.cron.Start()
}

// Stop halts the scheduler; running jobs are left to finish.
func (r *Runner) Stop() {
	r.cron.Stop()
}

func (r *Runner) run(task Task) error {
	switch task.Action {
	case "compress":
		entries := make([]filesystem.Entry, 0, len(task.Sources)+1)
		for _, src := range task.Sources {
			entries = append(entries, filesystem.EntryAt(src))
		}
		entries = append(entries, filesystem.EntryAt(task.Dest))
		_, err := r.host.StartCompress(context.Background(), task.Name, entries, task.Archive)
		return err
	case "extract":
		entries := []filesystem.Entry{
			filesystem.EntryAt(task.Source),
			filesystem.EntryAt(task.Dest),
		}
		_, err := r.host.StartExtract(context.Background(), task.Name, entries)
		return err
	default:
		return fmt.Errorf("jobs: unknown action %q for task %q", task.Action, task.Name)
	}
}
