package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inercia/iexec/pkg/config"
	"github.com/inercia/iexec/pkg/rlimit"
)

// limitFlag is one --rlimit-<kind>-soft/hard flag.
type limitFlag struct {
	kind  rlimit.Kind
	soft  bool
	value int64
	set   bool
}

func (f *limitFlag) String() string {
	if !f.set {
		return ""
	}
	return rlimit.FormatValue(f.value)
}

func (f *limitFlag) Set(s string) error {
	v, err := rlimit.ParseValue(s)
	if err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}

func (f *limitFlag) Type() string {
	return "limit"
}

// umaskFlag is an octal --umask value.
type umaskFlag struct {
	value int
	set   bool
}

func (f *umaskFlag) String() string {
	if !f.set {
		return ""
	}
	return fmt.Sprintf("%04o", f.value)
}

func (f *umaskFlag) Set(s string) error {
	v, err := config.ParseUmask(s)
	if err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}

func (f *umaskFlag) Type() string {
	return "octal"
}

// registerLimitFlags adds a soft and a hard flag for every limit kind of the
// platform.
func registerLimitFlags(cmd *cobra.Command) []*limitFlag {
	var flags []*limitFlag
	for _, k := range rlimit.Kinds() {
		soft := &limitFlag{kind: k, soft: true}
		hard := &limitFlag{kind: k}
		cmd.Flags().Var(soft, "rlimit-"+k.Flag+"-soft",
			fmt.Sprintf("Set the soft limit %s (a number or 'unlimited')", k.Name))
		cmd.Flags().Var(hard, "rlimit-"+k.Flag+"-hard",
			fmt.Sprintf("Set the hard limit %s (a number or 'unlimited')", k.Name))
		flags = append(flags, soft, hard)
	}
	return flags
}

// applyLimitFlags copies the limit flags given on the command line into b.
func applyLimitFlags(b *config.Builder, flags []*limitFlag) {
	for _, f := range flags {
		if !f.set {
			continue
		}
		if f.soft {
			b.SoftLimit(f.kind, f.value)
		} else {
			b.HardLimit(f.kind, f.value)
		}
	}
}
