// Package config parses the solver's single fixed-order directive file
// (spec.md §6): one directive per non-blank, non-'#' line, in a fixed
// order. This is deliberately not a structured document format (YAML/JSON)
// — the external interface is a positional list — so, in the idiom of the
// teacher's own hand-rolled grid-file readers (bufio.Reader plus
// line-at-a-time scanning, fatal on malformed input), we scan it by hand.
package config

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gocfd2d/internal/errs"
)

// TimeStepMethod selects local or global Δt computation (spec.md §4.5).
type TimeStepMethod uint8

const (
	TimeStepLocal TimeStepMethod = iota
	TimeStepGlobal
)

// TimeAccuracy selects the time integrator (spec.md §4.6).
type TimeAccuracy uint8

const (
	AccuracyNone TimeAccuracy = iota // forward Euler, single stage
	AccuracyRK4
)

// Config is the fully-parsed, validated directive file.
type Config struct {
	SchemeName     string // "van_leer" | "ldfss0"
	Interpolant    string // "none" | a MUSCL-class limiter name
	CFL            float64
	TimeStepMethod TimeStepMethod
	GlobalTimeStep float64 // only meaningful when TimeStepMethod == TimeStepGlobal; <=0 falls back to local
	TimeAccuracy   TimeAccuracy
	Tolerance      float64
	GridFile       string
	IBFile         string // "" when absent ('~')
	StateLoadFile  string // "" when absent ('~') -> free-stream init
	MaxIters       int
	CheckpointIter int // 0 = never
	DebugLevel     int
	Gamma          float64
	RGas           float64
	RhoInf         float64
	UInf           float64
	VInf           float64
	PInf           float64
	MuRef          float64
	TRef           float64
	SutherlandTemp float64
	Pr             float64
	InitCase       string // supplemented: "freestream" (default) | "shocktube"
}

const sentinel = "~"

var directiveOrder = []string{
	"scheme_name", "interpolant", "CFL", "time_stepping_method",
	"time_step_accuracy", "tolerance", "grid_file", "IB_file",
	"state_load_file", "max_iters", "checkpoint_iter", "debug_level",
	"gamma", "R_gas", "rho_inf", "u_inf", "v_inf", "p_inf", "mu_ref",
	"T_ref", "sutherland_temp", "Pr",
}

// Load reads and validates a directive file from path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.IOErr("config", "Load", "unable to open %q: %v", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads directives from r in the fixed order of spec.md §6, followed
// by an optional init_case line ("freestream" or "shocktube").
func Parse(r io.Reader) (cfg *Config, err error) {
	lines, err := nonBlankLines(r)
	if err != nil {
		return nil, err
	}
	cfg = &Config{InitCase: "freestream"}
	idx := 0
	next := func(directive string) (string, error) {
		if idx >= len(lines) {
			return "", errs.ConfigErr("config", "Parse", "missing directive %q (line %d of %d)", directive, idx+1, len(directiveOrder))
		}
		line := lines[idx]
		idx++
		return line, nil
	}

	line, err := next("scheme_name")
	if err != nil {
		return nil, err
	}
	cfg.SchemeName = strings.ToLower(strings.TrimSpace(line))
	if cfg.SchemeName != "van_leer" && cfg.SchemeName != "ldfss0" {
		return nil, errs.ConfigErr("config", "Parse", "unknown scheme_name %q", cfg.SchemeName)
	}

	if line, err = next("interpolant"); err != nil {
		return nil, err
	}
	cfg.Interpolant = strings.TrimSpace(line)

	if line, err = next("CFL"); err != nil {
		return nil, err
	}
	if cfg.CFL, err = parseFloat("CFL", line); err != nil {
		return nil, err
	}

	if line, err = next("time_stepping_method"); err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errs.ConfigErr("config", "Parse", "empty time_stepping_method directive")
	}
	switch fields[0] {
	case "l":
		cfg.TimeStepMethod = TimeStepLocal
	case "g":
		cfg.TimeStepMethod = TimeStepGlobal
		if len(fields) > 1 {
			if cfg.GlobalTimeStep, err = strconv.ParseFloat(fields[1], 64); err != nil {
				return nil, errs.ConfigErr("config", "Parse", "bad global_time_step %q: %v", fields[1], err)
			}
		}
	default:
		return nil, errs.ConfigErr("config", "Parse", "unknown time_stepping_method %q, want 'l' or 'g'", fields[0])
	}

	if line, err = next("time_step_accuracy"); err != nil {
		return nil, err
	}
	switch strings.TrimSpace(line) {
	case "none":
		cfg.TimeAccuracy = AccuracyNone
	case "RK4":
		cfg.TimeAccuracy = AccuracyRK4
	default:
		return nil, errs.ConfigErr("config", "Parse", "unknown time_step_accuracy %q", line)
	}

	if line, err = next("tolerance"); err != nil {
		return nil, err
	}
	if cfg.Tolerance, err = parseFloat("tolerance", line); err != nil {
		return nil, err
	}

	if line, err = next("grid_file"); err != nil {
		return nil, err
	}
	cfg.GridFile = strings.TrimSpace(line)
	if cfg.GridFile == "" || cfg.GridFile == sentinel {
		return nil, errs.ConfigErr("config", "Parse", "grid_file is required")
	}

	if line, err = next("IB_file"); err != nil {
		return nil, err
	}
	cfg.IBFile = optional(line)

	if line, err = next("state_load_file"); err != nil {
		return nil, err
	}
	cfg.StateLoadFile = optional(line)

	if line, err = next("max_iters"); err != nil {
		return nil, err
	}
	if cfg.MaxIters, err = parseInt("max_iters", line); err != nil {
		return nil, err
	}

	if line, err = next("checkpoint_iter"); err != nil {
		return nil, err
	}
	if cfg.CheckpointIter, err = parseInt("checkpoint_iter", line); err != nil {
		return nil, err
	}

	if line, err = next("debug_level"); err != nil {
		return nil, err
	}
	if cfg.DebugLevel, err = parseInt("debug_level", line); err != nil {
		return nil, err
	}

	floatFields := []struct {
		name string
		dst  *float64
	}{
		{"gamma", &cfg.Gamma}, {"R_gas", &cfg.RGas}, {"rho_inf", &cfg.RhoInf},
		{"u_inf", &cfg.UInf}, {"v_inf", &cfg.VInf}, {"p_inf", &cfg.PInf},
		{"mu_ref", &cfg.MuRef}, {"T_ref", &cfg.TRef},
		{"sutherland_temp", &cfg.SutherlandTemp}, {"Pr", &cfg.Pr},
	}
	for _, ff := range floatFields {
		if line, err = next(ff.name); err != nil {
			return nil, err
		}
		if *ff.dst, err = parseFloat(ff.name, line); err != nil {
			return nil, err
		}
	}

	// Optional trailing init_case directive; absent means "freestream".
	if idx < len(lines) {
		cfg.InitCase = strings.ToLower(strings.TrimSpace(lines[idx]))
		if cfg.InitCase != "freestream" && cfg.InitCase != "shocktube" {
			return nil, errs.ConfigErr("config", "Parse", "unknown init_case %q", cfg.InitCase)
		}
	}
	return cfg, nil
}

func optional(line string) string {
	line = strings.TrimSpace(line)
	if line == sentinel {
		return ""
	}
	return line
}

func parseFloat(name, line string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return 0, errs.ConfigErr("config", "Parse", "bad %s value %q: %v", name, line, err)
	}
	return v, nil
}

func parseInt(name, line string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, errs.ConfigErr("config", "Parse", "bad %s value %q: %v", name, line, err)
	}
	return v, nil
}

func nonBlankLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.IOErr("config", "nonBlankLines", "scanning directive file: %v", err)
	}
	return lines, nil
}

// Supersonic reports whether the free-stream state is supersonic, per
// spec.md §4.1: supersonic iff |V_inf| / a_inf >= 1.
func (c *Config) Supersonic() bool {
	speed := math.Sqrt(c.UInf*c.UInf + c.VInf*c.VInf)
	sound := math.Sqrt(math.Abs(c.Gamma * c.PInf / c.RhoInf))
	return speed/sound >= 1
}
