package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/inercia/iexec/pkg/rlimit"
)

// configView is the YAML shape of a Config, shared with profiles where the
// keys overlap
type configView struct {
	Args       []string             `yaml:"args"`
	Stdin      string               `yaml:"stdin,omitempty"`
	Stdout     string               `yaml:"stdout,omitempty"`
	Stderr     string               `yaml:"stderr,omitempty"`
	KeepOpen   bool                 `yaml:"keep_open"`
	Umask      string               `yaml:"umask,omitempty"`
	WorkingDir string               `yaml:"working_dir,omitempty"`
	User       string               `yaml:"user,omitempty"`
	Close      []int                `yaml:"close,omitempty"`
	PidFile    string               `yaml:"pid_file,omitempty"`
	Limits     map[string]LimitSpec `yaml:"limits,omitempty"`
	Env        []string             `yaml:"env,omitempty"`
}

// ToYAML renders the configuration. The environment is included only when
// withEnv is set, since it usually carries secrets.
func (c Config) ToYAML(withEnv bool) ([]byte, error) {
	view := configView{
		Args:       c.Args,
		KeepOpen:   c.KeepOpen,
		WorkingDir: c.WorkingDir,
		User:       c.User,
		Close:      c.CloseFDs,
		PidFile:    c.PidFile,
	}
	if !c.KeepOpen {
		view.Stdin, view.Stdout, view.Stderr = c.Stdin, c.Stdout, c.Stderr
	}
	if c.HasUmask() {
		view.Umask = fmt.Sprintf("%04o", c.Umask)
	}
	if withEnv {
		view.Env = c.Env
	}

	if len(c.Limits) > 0 {
		view.Limits = make(map[string]LimitSpec, len(c.Limits))
		for k, req := range c.Limits {
			var spec LimitSpec
			if req.Soft != rlimit.Unchanged {
				v := LimitValue(req.Soft)
				spec.Soft = &v
			}
			if req.Hard != rlimit.Unchanged {
				v := LimitValue(req.Hard)
				spec.Hard = &v
			}
			view.Limits[k.Flag] = spec
		}
	}

	return yaml.Marshal(view)
}
