package jobfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Job describes one child process to run: the program, its arguments and
// environment overrides, an optional working directory, and an optional
// file to feed to the child's standard input.
type Job struct {
	Program   string            `yaml:"program"`
	Args      []string          `yaml:"args"`
	Env       map[string]string `yaml:"env"`
	Dir       string            `yaml:"dir"`
	StdinFile string            `yaml:"stdin_file"`
}

// Load reads a job description from the provided path.
func Load(path string) (*Job, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve job path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open job file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	var job Job
	if err := decoder.Decode(&job); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	if job.Program == "" {
		return nil, fmt.Errorf("%s: job requires a program", absPath)
	}

	// Relative paths in the job resolve against the job file's directory.
	jobDir := filepath.Dir(absPath)
	if job.Dir != "" && !filepath.IsAbs(job.Dir) {
		job.Dir = filepath.Join(jobDir, job.Dir)
	}

	if job.StdinFile != "" && !filepath.IsAbs(job.StdinFile) {
		job.StdinFile = filepath.Join(jobDir, job.StdinFile)
	}

	return &job, nil
}

// Environ returns the parent environment with the job's overrides applied,
// expanded with os.ExpandEnv. Nil when the job declares no overrides, so
// the child plainly inherits.
func (j *Job) Environ() []string {
	if len(j.Env) == 0 {
		return nil
	}

	env := os.Environ()
	for k, v := range j.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, os.ExpandEnv(v)))
	}

	return env
}
