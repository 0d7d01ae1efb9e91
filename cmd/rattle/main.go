package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Markush2010/rattle/pkg/rattle"
	"github.com/Markush2010/rattle/pkg/starfilters"
)

type renderConfig struct {
	TemplateRoots []string `yaml:"template_roots"`
	FilterFile    string   `yaml:"filter_file,omitempty"`
}

func (c *renderConfig) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decoding config file: %w", err)
	}
	return nil
}

// rootsLoader tries each configured template root in order.
type rootsLoader []string

func (r rootsLoader) Load(name string) (string, error) {
	for _, root := range r {
		src, err := rattle.DirLoader{Root: root}.Load(name)
		if err == nil {
			return src, nil
		}
		if _, ok := err.(rattle.ErrTemplateNotFound); !ok {
			return "", err
		}
	}
	return "", rattle.ErrTemplateNotFound{Name: name}
}

var (
	configPath  string
	contextPath string
	filterPath  string
	outputPath  string
	escapeHTML  bool
	verbose     bool
)

var rootCmd = cobra.Command{
	Use:   "rattle",
	Short: "Compile and render rattle templates",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

var renderCmd = cobra.Command{
	Use:   "render [template]",
	Short: "Render a template file with a YAML context",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one template file")
		}
		env, err := buildEnvironment(args[0])
		if err != nil {
			return err
		}
		ctx, err := loadContext(contextPath)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		slog.Debug("compiling template", "path", args[0])
		tmpl, err := env.Compile(string(src))
		if err != nil {
			return err
		}
		out := os.Stdout
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		for frag, err := range tmpl.Fragments(ctx) {
			if err != nil {
				return err
			}
			if _, err := out.WriteString(frag); err != nil {
				return err
			}
		}
		return nil
	},
}

var astCmd = cobra.Command{
	Use:   "ast [template]",
	Short: "Print the parsed structure of a template file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one template file")
		}
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := rattle.Parse(string(src))
		if err != nil {
			return err
		}
		fmt.Print(rattle.Pretty(doc))
		return nil
	},
}

// buildEnvironment wires the collaborators: a loader over the configured
// template roots (defaulting to the template's own directory), the filter
// table, and the escape hook.
func buildEnvironment(templatePath string) (*rattle.Environment, error) {
	var cfg renderConfig
	if configPath != "" {
		if err := cfg.load(configPath); err != nil {
			return nil, err
		}
	}
	roots := cfg.TemplateRoots
	if len(roots) == 0 {
		roots = []string{filepath.Dir(templatePath)}
	}
	env := rattle.NewEnvironment()
	env.Loader = rootsLoader(roots)
	if escapeHTML {
		env.Escape = rattle.HTMLEscape
	}
	filterFile := filterPath
	if filterFile == "" {
		filterFile = cfg.FilterFile
	}
	if filterFile != "" {
		slog.Debug("loading starlark filters", "path", filterFile)
		extra, err := starfilters.Load(filterFile, nil)
		if err != nil {
			return nil, err
		}
		for name, fn := range extra {
			env.Filters[name] = fn
		}
	}
	return env, nil
}

func loadContext(path string) (rattle.Context, error) {
	if path == "" {
		return rattle.Context{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding context file: %w", err)
	}
	return rattle.NewContext(m), nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file with template roots")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	renderCmd.Flags().StringVar(&contextPath, "context", "", "YAML file with render context values")
	renderCmd.Flags().StringVar(&filterPath, "filters", "", "Starlark file defining extra filters")
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write output to file instead of stdout")
	renderCmd.Flags().BoolVar(&escapeHTML, "html", false, "HTML-escape emitted values")
	rootCmd.AddCommand(&renderCmd, &astCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
