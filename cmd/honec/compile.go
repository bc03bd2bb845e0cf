package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/honelang/hone/internal/cache"
	"github.com/honelang/hone/internal/emit"
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/pipeline"
	"github.com/honelang/hone/internal/resolver"
	"github.com/honelang/hone/internal/value"
)

func compileCmd() *cobra.Command {
	var (
		format         string
		output         string
		variantFlags   []string
		allowEnv       bool
		ignorePolicies bool
		secretsMode    string
		argsJSON       string
		noCache        bool
		cacheDir       string
	)

	cmd := &cobra.Command{
		Use:   "compile [file.hone]",
		Short: "Compile a hone source file to JSON, YAML, TOML, or .env",
		Long: `Compile resolves a hone source file's imports, evaluates it, applies
schema and policy checks, resolves secrets, and renders the result in
the requested format.

Examples:
  honec compile service.hone
  honec compile service.hone --format yaml --variant env=prod
  honec compile service.hone -o service.json --secrets env`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(args[0], compileOptions{
				format:         format,
				output:         output,
				variants:       variantFlags,
				allowEnv:       allowEnv,
				ignorePolicies: ignorePolicies,
				secretsMode:    secretsMode,
				argsJSON:       argsJSON,
				noCache:        noCache,
				cacheDir:       cacheDir,
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, yaml, toml, env")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringArrayVar(&variantFlags, "variant", nil, "Variant selection key=value (repeatable)")
	cmd.Flags().BoolVar(&allowEnv, "allow-env", false, "Permit env(...) builtin calls")
	cmd.Flags().BoolVar(&ignorePolicies, "ignore-policies", false, "Skip policy evaluation entirely")
	cmd.Flags().StringVar(&secretsMode, "secrets", "placeholder", "Secrets handling: placeholder, error, env")
	cmd.Flags().StringVar(&argsJSON, "args", "", "Path to a JSON file providing the args{} value")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the on-disk build cache")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Override the cache directory (default: XDG cache dir)")

	return cmd
}

type compileOptions struct {
	format         string
	output         string
	variants       []string
	allowEnv       bool
	ignorePolicies bool
	secretsMode    string
	argsJSON       string
	noCache        bool
	cacheDir       string
}

func runCompile(path string, opts compileOptions) error {
	variants, err := parseVariants(opts.variants)
	if err != nil {
		return err
	}

	secretsMode, err := parseSecretsMode(opts.secretsMode)
	if err != nil {
		return err
	}

	var args value.Value
	argsHash := ""
	if opts.argsJSON != "" {
		raw, err := os.ReadFile(opts.argsJSON)
		if err != nil {
			return fmt.Errorf("read args file: %w", err)
		}
		args, err = emit.ParseJSON(raw)
		if err != nil {
			return fmt.Errorf("parse args file: %w", err)
		}
		argsHash = cache.HashString(string(raw))
	}

	cfg := pipeline.Config{
		Args:           args,
		AllowEnv:       opts.allowEnv,
		Variants:       variants,
		IgnorePolicies: opts.ignorePolicies,
		SecretsMode:    secretsMode,
	}

	store, key, hit := lookupCache(path, opts, cfg, argsHash)
	if hit {
		entry, _ := store.Get(key)
		fmt.Fprintf(os.Stderr, "%s cache hit\n", cyan("→"))
		return writeOutput(opts.output, []byte(entry.Output))
	}

	driver := pipeline.NewDriver()
	result, err := driver.Compile(path, cfg)
	if err != nil {
		printReportErr(err)
		return err
	}
	printDriverWarnings(driver.Warnings())

	rendered, err := render(result, opts.format)
	if err != nil {
		return err
	}

	if store != nil {
		_ = store.Put(key, cache.NewEntry(string(rendered), opts.format, path, version))
	}

	return writeOutput(opts.output, rendered)
}

func lookupCache(path string, opts compileOptions, cfg pipeline.Config, argsHash string) (*cache.Store, cache.Key, bool) {
	// §4.7 disabled paths: allow-env makes env()/file() calls
	// nondeterministic, so neither serving a stale hit nor storing this
	// run's output would be safe (§8.1 cache-correctness).
	if opts.noCache || cfg.AllowEnv {
		return nil, cache.Key{}, false
	}

	dir := opts.cacheDir
	if dir == "" {
		d, ok := cache.DefaultDir()
		if !ok {
			return nil, cache.Key{}, false
		}
		dir = d
	}
	store := cache.NewStore(dir)

	graph, err := resolver.New().Resolve(path)
	if err != nil {
		return store, cache.Key{}, false
	}
	var hashes []string
	for _, p := range graph.TopologicalOrder() {
		raw, err := os.ReadFile(p)
		if err != nil {
			return store, cache.Key{}, false
		}
		hashes = append(hashes, cache.HashString(string(raw)))
	}
	hashes = append(hashes, cache.HashString(path))

	key := cache.Compute(hashes, cfg.Variants, argsHash, opts.format, version)
	_, ok := store.Get(key)
	return store, key, ok
}

func render(v value.Value, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return emit.JSON(v)
	case "yaml", "yml":
		return emit.YAML(v)
	case "toml":
		return emit.TOML(v)
	case "env", "dotenv":
		return emit.Dotenv(v)
	default:
		return nil, fmt.Errorf("unknown format %q (want json, yaml, toml, env)", format)
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%s wrote %s\n", green("✓"), path)
	return nil
}

func parseVariants(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(flags))
	for _, f := range flags {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --variant %q, want key=value", f)
		}
		out[k] = v
	}
	return out, nil
}

func parseSecretsMode(s string) (pipeline.SecretsMode, error) {
	switch s {
	case "", "placeholder":
		return pipeline.SecretsPlaceholder, nil
	case "error":
		return pipeline.SecretsError, nil
	case "env":
		return pipeline.SecretsEnv, nil
	default:
		return "", fmt.Errorf("unknown --secrets mode %q (want placeholder, error, env)", s)
	}
}

func printDriverWarnings(warnings []herrors.Warning) {
	for _, w := range warnings {
		if w.File != "" {
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", yellow("warning:"), w.File, w.Message)
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n", yellow("warning:"), w.Message)
		}
	}
}
