package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/terbatch/internal/capability"
	"github.com/John-Robertt/terbatch/internal/lang"
	"github.com/John-Robertt/terbatch/internal/ter"
)

// probeReport 是 probe 命令的输出结构（stdout 非 TTY 时以 JSON 输出）。
type probeReport struct {
	Capabilities map[string]bool           `json:"capabilities"`
	Options      map[string]map[string]any `json:"options"`
}

func newProbeCmd(s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Show which optional TER parameters the bundled scorer accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			colorOn, err := useColor(cmd, s.outTTY)
			if err != nil {
				return err
			}
			rep := buildProbeReport(capability.Probe(ter.New))
			if !s.outTTY {
				enc := json.NewEncoder(s.out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return fail(1, "输出失败：%v", err)
				}
				return nil
			}
			fmt.Fprint(s.out, formatProbe(rep, colorOn))
			return nil
		},
	}
}

func buildProbeReport(set capability.Set) probeReport {
	rep := probeReport{
		Capabilities: make(map[string]bool, len(capability.Names())),
		Options:      make(map[string]map[string]any),
	}
	for _, name := range capability.Names() {
		rep.Capabilities[name] = set.Has(name)
	}
	for _, f := range lang.Families() {
		rep.Options[f.String()] = capability.Options(f, set)
	}
	return rep
}

func formatProbe(rep probeReport, colorOn bool) string {
	yes := color.New(color.FgGreen)
	no := color.New(color.FgYellow)
	for _, c := range []*color.Color{yes, no} {
		if colorOn {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var b strings.Builder
	b.WriteString("capabilities:\n")
	for _, name := range capability.Names() {
		state := no.Sprint("no")
		if rep.Capabilities[name] {
			state = yes.Sprint("yes")
		}
		fmt.Fprintf(&b, "  %-15s %s\n", name, state)
	}
	b.WriteString("options by family:\n")
	for _, f := range lang.Families() {
		fmt.Fprintf(&b, "  %-17s %s\n", f, formatOptions(rep.Options[f.String()]))
		if pats := lang.Patterns(f); len(pats) > 0 {
			fmt.Fprintf(&b, "  %-17s codes: %s\n", "", strings.Join(pats, ", "))
		}
	}
	return b.String()
}

func formatOptions(opts map[string]any) string {
	if len(opts) == 0 {
		return "(defaults)"
	}
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, opts[k]))
	}
	return strings.Join(parts, " ")
}
