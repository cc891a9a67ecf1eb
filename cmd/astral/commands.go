package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leofalp/astral/core/binding"
	"github.com/leofalp/astral/core/catalog"
	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/core/registry"
	"github.com/leofalp/astral/internal/config"
	"github.com/leofalp/astral/internal/utils"
	"github.com/leofalp/astral/providers/ai"
	"github.com/leofalp/astral/providers/observability/slogobs"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	maxNamesText = 120
)

const usage = `usage: astral <command> [flags] [args]

commands:
  validate                                      load and cross-check catalog and registry
  resolve <provider> <identifier>               show the catalog entry of a model
  list [provider]                               list models, optionally of one provider
  adapter <provider>                            show the registry entry of a provider
  cost <provider> <identifier> <prompt> <cached> <output>
                                                price a request by token counts

resolve, list, adapter and cost accept -json.
`

type app struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	obs    *slogobs.Observer
}

func run(args []string, stdout, stderr io.Writer, cfg *config.Config) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	a := &app{
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		obs:    slogobs.New(append(cfg.ObserverOptions(), slogobs.WithOutput(stderr))...),
	}
	var err error
	switch args[0] {
	case "validate":
		err = a.validate(args[1:])
	case "resolve":
		err = a.resolve(args[1:])
	case "list":
		err = a.list(args[1:])
	case "adapter":
		err = a.adapter(args[1:])
	case "cost":
		err = a.cost(args[1:])
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "astral: unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}

	var (
		uerr usageError
		ferr flagError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ferr), errors.Is(err, flag.ErrHelp):
		// The flag set has already written its own message.
		return exitUsage
	case errors.As(err, &uerr):
		fmt.Fprintln(stderr, "astral:", err)
		return exitUsage
	default:
		fmt.Fprintln(stderr, "astral:", err)
		return exitFailure
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

// flagError is a flag parsing failure already reported by the FlagSet.
type flagError struct{ error }

func (e flagError) Unwrap() error { return e.error }

// parseFlags parses the flags of command and checks the positional count.
func (a *app) parseFlags(command string, args []string, minArgs, maxArgs int) (*flag.FlagSet, *bool, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	jsonOutput := fs.Bool("json", false, "Output in JSON format")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, flagError{err}
	}
	if n := fs.NArg(); n < minArgs || n > maxArgs {
		return nil, nil, usageError(fmt.Sprintf("%s: wrong number of arguments\n\n%s", command, usage))
	}
	return fs, jsonOutput, nil
}

func (a *app) loadCatalog() (*catalog.Catalog, error) {
	if a.cfg.CatalogPath != "" {
		return catalog.Load(a.cfg.CatalogPath, catalog.WithObserver(a.obs))
	}
	return catalog.LoadDefault(catalog.WithObserver(a.obs))
}

func (a *app) loadRegistry() (*registry.Registry, error) {
	if a.cfg.RegistryPath != "" {
		return registry.Load(a.cfg.RegistryPath, registry.WithObserver(a.obs))
	}
	return registry.LoadDefault(registry.WithObserver(a.obs))
}

func (a *app) binder() (*binding.Binder, error) {
	cat, err := a.loadCatalog()
	if err != nil {
		return nil, err
	}
	reg, err := a.loadRegistry()
	if err != nil {
		return nil, err
	}
	return binding.New(cat, reg,
		binding.WithConfigSource(a.cfg.ClientConfig),
		binding.WithObserver(a.obs),
	)
}

func (a *app) validate(args []string) error {
	if _, _, err := a.parseFlags("validate", args, 0, 0); err != nil {
		return err
	}

	b, err := a.binder()
	if err != nil {
		var verr *errs.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(a.stdout, "invalid %s:\n", verr.Source)
			for _, p := range verr.Problems {
				fmt.Fprintf(a.stdout, "  - %s\n", p)
			}
		}
		return err
	}

	cat := b.Catalog()
	fmt.Fprintf(a.stdout, "ok: %d providers, %d models (%s, %s)\n",
		len(cat.Providers()), len(cat.All()), cat.Source(), b.Registry().Source())
	for _, provider := range cat.Providers() {
		if !a.cfg.HasCredentials(provider) {
			fmt.Fprintf(a.stdout, "note: no API key configured for %s\n", provider)
		}
	}
	return nil
}

func (a *app) resolve(args []string) error {
	fs, jsonOutput, err := a.parseFlags("resolve", args, 2, 2)
	if err != nil {
		return err
	}
	b, err := a.binder()
	if err != nil {
		return err
	}

	bnd, err := b.Bind(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	m := bnd.Model
	if *jsonOutput {
		fmt.Fprintln(a.stdout, utils.JSONToString(m, true))
		return nil
	}

	fmt.Fprintf(a.stdout, "provider:    %s\n", m.Provider)
	fmt.Fprintf(a.stdout, "alias:       %s\n", m.Alias)
	fmt.Fprintf(a.stdout, "model:       %s\n", m.AliasMappedModel)
	fmt.Fprintf(a.stdout, "model type:  %s\n", m.ModelType)
	fmt.Fprintf(a.stdout, "versions:    %s\n", strings.Join(m.ModelNames, ", "))
	fmt.Fprintf(a.stdout, "features:    %s\n", featureList(m))
	fmt.Fprintf(a.stdout, "pricing:     %s\n", m.Cost())
	fmt.Fprintf(a.stdout, "converter:   %s -> %s\n", bnd.Converter.QualifiedConverter(), bnd.MessageConverter.OutputType())
	return nil
}

func featureList(m catalog.ModelDescriptor) string {
	var on []string
	for _, f := range catalog.AllFeatures {
		if m.Supports(f) {
			on = append(on, string(f))
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ", ")
}

func (a *app) list(args []string) error {
	fs, jsonOutput, err := a.parseFlags("list", args, 0, 1)
	if err != nil {
		return err
	}
	cat, err := a.loadCatalog()
	if err != nil {
		return err
	}

	var models []catalog.ModelDescriptor
	if provider := fs.Arg(0); provider != "" {
		if models, err = cat.Models(provider); err != nil {
			return err
		}
	} else {
		models = cat.All()
	}

	if *jsonOutput {
		fmt.Fprintln(a.stdout, utils.JSONToString(models, true))
		return nil
	}
	for _, m := range models {
		fmt.Fprintf(a.stdout, "%-12s %-28s %-30s %s\n", m.Provider, m.Alias, m.AliasMappedModel,
			utils.JoinTruncated(m.ModelNames, maxNamesText))
	}
	return nil
}

func (a *app) adapter(args []string) error {
	fs, jsonOutput, err := a.parseFlags("adapter", args, 1, 1)
	if err != nil {
		return err
	}
	reg, err := a.loadRegistry()
	if err != nil {
		return err
	}

	adapter, err := reg.Adapter(fs.Arg(0))
	if err != nil {
		return err
	}
	if *jsonOutput {
		fmt.Fprintln(a.stdout, utils.JSONToString(adapter, true))
		return nil
	}

	fmt.Fprintf(a.stdout, "provider:  %s\n", adapter.Provider)
	fmt.Fprintf(a.stdout, "sync:      %s\n", adapter.QualifiedClient(ai.ClientModeSync))
	fmt.Fprintf(a.stdout, "async:     %s\n", adapter.QualifiedClient(ai.ClientModeAsync))
	for _, mt := range catalog.KnownModelTypes {
		desc, ok := adapter.ModelTypes[mt]
		if !ok {
			continue
		}
		fmt.Fprintf(a.stdout, "%-10s %s -> %s\n", string(mt)+":", desc.QualifiedConverter(), desc.QualifiedType())
	}
	return nil
}

func (a *app) cost(args []string) error {
	fs, jsonOutput, err := a.parseFlags("cost", args, 5, 5)
	if err != nil {
		return err
	}

	var counts [3]int
	for i := range counts {
		n, err := strconv.Atoi(fs.Arg(2 + i))
		if err != nil || n < 0 {
			return usageError(fmt.Sprintf("cost: token count %q is not a non-negative integer", fs.Arg(2+i)))
		}
		counts[i] = n
	}

	b, err := a.binder()
	if err != nil {
		return err
	}
	breakdown, err := b.EstimateCost(fs.Arg(0), fs.Arg(1), ai.Usage{
		PromptTokens:     counts[0],
		CachedTokens:     counts[1],
		CompletionTokens: counts[2],
	})
	if err != nil {
		return err
	}

	if *jsonOutput {
		fmt.Fprintln(a.stdout, utils.JSONToString(breakdown, true))
		return nil
	}
	fmt.Fprintf(a.stdout, "prompt:  %s\n", breakdown.Prompt.StringFixed(6))
	fmt.Fprintf(a.stdout, "cached:  %s\n", breakdown.Cached.StringFixed(6))
	fmt.Fprintf(a.stdout, "output:  %s\n", breakdown.Output.StringFixed(6))
	fmt.Fprintf(a.stdout, "total:   %s\n", breakdown)
	if len(breakdown.Unpriced) > 0 {
		fmt.Fprintf(a.stdout, "unpriced: %s\n", strings.Join(breakdown.Unpriced, ", "))
	}
	return nil
}
