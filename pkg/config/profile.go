package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inercia/iexec/pkg/common"
	"github.com/inercia/iexec/pkg/rlimit"
)

// Profile is a launch profile loaded from YAML. Every field is optional;
// command line flags take precedence over it.
type Profile struct {
	// Command is a shell-like command line, split without any expansion
	Command string `yaml:"command,omitempty"`

	// Args is the program and its arguments; it wins over Command
	Args []string `yaml:"args,omitempty"`

	Stdin    string `yaml:"stdin,omitempty"`
	Stdout   string `yaml:"stdout,omitempty"`
	Stderr   string `yaml:"stderr,omitempty"`
	KeepOpen *bool  `yaml:"keep_open,omitempty"`

	// Umask is an octal string such as "027"
	Umask string `yaml:"umask,omitempty"`

	WorkingDir string `yaml:"working_dir,omitempty"`
	User       string `yaml:"user,omitempty"`
	Close      []int  `yaml:"close,omitempty"`
	PidFile    string `yaml:"pid_file,omitempty"`

	// Limits is keyed by limit name, "nofile" or "RLIMIT_NOFILE"
	Limits map[string]LimitSpec `yaml:"limits,omitempty"`

	// Env adds or overrides variables of the child environment
	Env map[string]string `yaml:"env,omitempty"`

	// EnvFiles are dotenv files loaded before Env is applied
	EnvFiles []string `yaml:"env_files,omitempty"`

	// Constraints are CEL expressions that must hold for the launch to proceed
	Constraints []string `yaml:"constraints,omitempty"`
}

// LimitSpec is the soft/hard pair of a profile limit entry.
type LimitSpec struct {
	Soft *LimitValue `yaml:"soft,omitempty"`
	Hard *LimitValue `yaml:"hard,omitempty"`
}

// LimitValue is a limit that accepts integers or "unlimited" in YAML.
type LimitValue int64

// UnmarshalYAML implements yaml.Unmarshaler
func (v *LimitValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: limit value must be a scalar", node.Line)
	}
	parsed, err := rlimit.ParseValue(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = LimitValue(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (v LimitValue) MarshalYAML() (interface{}, error) {
	if int64(v) == rlimit.Unlimited {
		return "unlimited", nil
	}
	return int64(v), nil
}

// TemplateData is exposed to the templates in profile strings.
type TemplateData struct {
	Program string
	Args    []string
	Env     map[string]string
}

// ParseProfile decodes a YAML profile. Unknown keys are rejected.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &p, nil
}

// Argv returns the command of the profile, if any.
func (p *Profile) Argv() ([]string, error) {
	if len(p.Args) > 0 {
		return append([]string(nil), p.Args...), nil
	}
	if strings.TrimSpace(p.Command) == "" {
		return nil, nil
	}
	return SplitCommand(p.Command)
}

// RenderEnv renders the profile env values.
func (p *Profile) RenderEnv(data TemplateData) (map[string]string, error) {
	out := make(map[string]string, len(p.Env))
	for k, v := range p.Env {
		rendered, err := common.ProcessTemplate(v, data)
		if err != nil {
			return nil, fmt.Errorf("failed to render env %s: %w", k, err)
		}
		out[k] = rendered
	}
	return out, nil
}

// RenderEnvFiles renders the profile env file paths.
func (p *Profile) RenderEnvFiles(data TemplateData) ([]string, error) {
	files, err := common.ProcessTemplateList(p.EnvFiles, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render env_files: %w", err)
	}
	return files, nil
}

// Apply copies the profile settings into b, rendering templates with data.
// Args and Env are left to the caller.
func (p *Profile) Apply(b *Builder, data TemplateData) error {
	render := func(field, value string, set func(string) *Builder) error {
		if value == "" {
			return nil
		}
		rendered, err := common.ProcessTemplate(value, data)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", field, err)
		}
		set(rendered)
		return nil
	}

	for _, f := range []struct {
		name  string
		value string
		set   func(string) *Builder
	}{
		{"stdin", p.Stdin, b.Stdin},
		{"stdout", p.Stdout, b.Stdout},
		{"stderr", p.Stderr, b.Stderr},
		{"working_dir", p.WorkingDir, b.WorkingDir},
		{"user", p.User, b.User},
		{"pid_file", p.PidFile, b.PidFile},
	} {
		if err := render(f.name, f.value, f.set); err != nil {
			return err
		}
	}

	if p.KeepOpen != nil {
		b.KeepOpen(*p.KeepOpen)
	}

	if p.Umask != "" {
		mask, err := ParseUmask(p.Umask)
		if err != nil {
			return err
		}
		b.Umask(mask)
	}

	b.Close(p.Close...)

	for name, spec := range p.Limits {
		k, ok := rlimit.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown resource limit %q", name)
		}
		if spec.Soft != nil {
			b.SoftLimit(k, int64(*spec.Soft))
		}
		if spec.Hard != nil {
			b.HardLimit(k, int64(*spec.Hard))
		}
	}

	b.Constraints(p.Constraints...)
	return nil
}

// ParseUmask parses an octal umask such as "022" or "0o027".
func ParseUmask(s string) (int, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0o"), "0O")
	v, err := strconv.ParseUint(clean, 8, 32)
	if err != nil || v > 0777 {
		return 0, fmt.Errorf("invalid umask %q: expected an octal value up to 0777", s)
	}
	return int(v), nil
}
