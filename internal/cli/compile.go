package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2client/internal/codemodel"
	"github.com/mark3labs/swagger2client/internal/compiler"
	genspec "github.com/mark3labs/swagger2client/internal/spec"
	"github.com/mark3labs/swagger2client/internal/typereg"
)

// CompileConfig captures all inputs that influence the compile command after
// merging defaults, config file values, and CLI overrides.
type CompileConfig struct {
	Input       string
	Out         string
	IncludeTags []string
	ExcludeTags []string
	ConfigPath  string
	DryRun      bool
	Verbose     bool
}

var compileRunner = runCompile

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile an OpenAPI/Swagger document into a client method model",
		Long: "Compile an OpenAPI/Swagger document into a client method model. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2client compile --input spec.yaml --out model.yaml
  swagger2client --config config.yaml compile --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveCompileConfig(cmd)
			if err != nil {
				return err
			}
			return compileRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output file for the compiled method model (stdout when omitted)")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.Bool("dry-run", false, "Preview compiled methods without writing the model")

	return cmd
}

func resolveCompileConfig(cmd *cobra.Command) (*CompileConfig, error) {
	cfg := &CompileConfig{}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyCompileConfigFromFile(cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyCompileFlagOverrides(cmd.Flags(), cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyCompileFlagOverrides(flags *pflag.FlagSet, cfg *CompileConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("include-tags") {
		value, err := flags.GetStringSlice("include-tags")
		if err != nil {
			return err
		}
		cfg.IncludeTags = sanitizeTags(value)
	}
	if flags.Changed("exclude-tags") {
		value, err := flags.GetStringSlice("exclude-tags")
		if err != nil {
			return err
		}
		cfg.ExcludeTags = sanitizeTags(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *CompileConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
}

func (c *CompileConfig) validate() error {
	if c.Input == "" {
		return newUsageError("compile: --input is required (set via flag or config file)")
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("compile: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func runCompile(ctx context.Context, cfg *CompileConfig) error {
	// 1) Load the document (file or http/https URL) as a Swagger v2 model.
	doc, err := genspec.Load(ctx, cfg.Input)
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}

	// 2) Normalize into operation specs with tag filters applied.
	svc, err := genspec.BuildServiceSpec(
		doc,
		genspec.WithIncludeTags(cfg.IncludeTags),
		genspec.WithExcludeTags(cfg.ExcludeTags),
	)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}

	// 3) Build the type registry from the document's definitions.
	registry, err := typereg.FromDefinitions(svc.Definitions)
	if err != nil {
		return fmt.Errorf("build type registry: %w", err)
	}

	// 4) Compile every operation, collecting failures instead of stopping at
	// the first one.
	code := codemodel.New()
	cc, err := compiler.NewContext(registry, code,
		compiler.WithServiceDefaults(svc.DefaultProduces, svc.DefaultConsumes))
	if err != nil {
		return err
	}

	var failures []string
	for i := range svc.Operations {
		op := &svc.Operations[i]
		if _, err := cc.BuildMethod(op.Group, op); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", op.ID, err))
		}
	}

	if cfg.Verbose {
		for _, w := range cc.Warnings() {
			fmt.Fprintf(os.Stderr, "[WARN] %s\n", w)
		}
	}
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "[ERROR] %s\n", f)
	}

	if cfg.DryRun {
		printCompilePlan(code)
	} else if err := writeModel(code, cfg.Out); err != nil {
		return err
	}

	if len(failures) > 0 {
		return fmt.Errorf("compile: %d of %d operations failed", len(failures), len(svc.Operations))
	}
	return nil
}

func printCompilePlan(code *codemodel.Model) {
	fmt.Fprintf(os.Stdout, "Compiled %d methods, %d synthesized types:\n", len(code.Methods), len(code.Types))
	for _, m := range code.Methods {
		fmt.Fprintf(os.Stdout, "- %s %s -> %s\n", strings.ToUpper(m.HTTPMethod), m.URLTemplate, m.QualifiedName())
	}
}

func writeModel(code *codemodel.Model, out string) error {
	var w io.Writer = os.Stdout
	if out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return newUsageError(fmt.Sprintf("compile: cannot create output directory: %v", err))
		}
		f, err := os.Create(out)
		if err != nil {
			return newUsageError(fmt.Sprintf("compile: cannot write %s: %v", out, err))
		}
		defer f.Close()
		w = f
	}
	return code.WriteYAML(w)
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyCompileConfigFromFile(cfg *CompileConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		switch normalizeKey(key) {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Input = str
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "includetags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.IncludeTags = sanitizeTags(list)
		case "excludetags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ExcludeTags = sanitizeTags(list)
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
