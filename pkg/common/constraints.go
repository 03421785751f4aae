package common

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// LaunchVars are the values exposed to launch constraints.
type LaunchVars struct {
	Program    string
	Args       []string
	User       string
	WorkingDir string
	PidFile    string
	KeepOpen   bool
	Env        map[string]string
}

func (v LaunchVars) activation() map[string]interface{} {
	args := v.Args
	if args == nil {
		args = []string{}
	}
	env := v.Env
	if env == nil {
		env = map[string]string{}
	}
	return map[string]interface{}{
		"program":     v.Program,
		"args":        args,
		"user":        v.User,
		"working_dir": v.WorkingDir,
		"pid_file":    v.PidFile,
		"keep_open":   v.KeepOpen,
		"env":         env,
	}
}

// LaunchConstraints holds compiled CEL programs guarding a launch
type LaunchConstraints struct {
	exprs    []string
	programs []cel.Program
	logger   *Logger
}

// NewLaunchConstraints compiles CEL expressions over the launch variables
// (program, args, user, working_dir, pid_file, keep_open, env).
func NewLaunchConstraints(constraints []string, logger *Logger) (*LaunchConstraints, error) {
	if logger == nil {
		logger = GetLogger()
	}

	lc := &LaunchConstraints{logger: logger}
	if len(constraints) == 0 {
		return lc, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("program", cel.StringType),
		cel.Variable("args", cel.ListType(cel.StringType)),
		cel.Variable("user", cel.StringType),
		cel.Variable("working_dir", cel.StringType),
		cel.Variable("pid_file", cel.StringType),
		cel.Variable("keep_open", cel.BoolType),
		cel.Variable("env", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	for _, expr := range constraints {
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("failed to compile constraint '%s': %w", expr, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to create program for constraint '%s': %w", expr, err)
		}

		lc.exprs = append(lc.exprs, expr)
		lc.programs = append(lc.programs, prg)
	}

	logger.Debug("Compiled %d launch constraints", len(lc.programs))
	return lc, nil
}

// Evaluate runs every constraint against vars and returns the expressions
// that did not hold. An evaluation error stops at the first failing program.
func (lc *LaunchConstraints) Evaluate(vars LaunchVars) ([]string, error) {
	if lc == nil || len(lc.programs) == 0 {
		return nil, nil
	}

	activation := vars.activation()

	var failed []string
	for i, prg := range lc.programs {
		val, _, err := prg.Eval(activation)
		if err != nil {
			return nil, fmt.Errorf("constraint '%s' evaluation error: %w", lc.exprs[i], err)
		}

		ok, isBool := val.Value().(bool)
		if !isBool {
			return nil, fmt.Errorf("constraint '%s' did not evaluate to a boolean", lc.exprs[i])
		}
		if !ok {
			lc.logger.Debug("Constraint #%d failed: %s", i+1, lc.exprs[i])
			failed = append(failed, lc.exprs[i])
		}
	}

	return failed, nil
}
