package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"

	layout "github.com/cubeos/go-layout/components/layout"
	"github.com/cubeos/go-layout/pkg/kvstore"
)

type cli struct {
	DB   string `default:"layout.db" type:"path" help:"Path to the layout preferences database."`
	Mode string `default:"standard" enum:"standard,advanced" help:"Layout mode to operate on."`

	Export   exportCmd   `cmd:"" help:"Write the current layout as a portable JSON document."`
	Import   importCmd   `cmd:"" help:"Replace the layout from a JSON document."`
	Presets  presetsCmd  `cmd:"" help:"List built-in and user presets."`
	Apply    applyCmd    `cmd:"" help:"Apply a preset by id."`
	Reset    resetCmd    `cmd:"" help:"Restore the built-in default layout."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a widget descriptor to a manifest file."`
}

func main() {
	root := &cli{}
	ctx := kong.Parse(root,
		kong.Description("Layout maintenance utility for CubeOS dashboards."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background(), root)
	ctx.FatalIfErrorf(err)
}

// openService loads the persisted layout for the selected mode.
func (c *cli) openService(ctx context.Context) (*layout.Service, func(), error) {
	backend, err := kvstore.OpenSQLite(ctx, c.DB)
	if err != nil {
		return nil, nil, err
	}
	svc := layout.NewService(layout.Options{
		Mode:    layout.Mode(c.Mode),
		Backend: backend,
	})
	if err := svc.Start(ctx); err != nil {
		backend.Close()
		return nil, nil, err
	}
	cleanup := func() {
		_ = svc.Stop(ctx)
		_ = backend.Close()
	}
	return svc, cleanup, nil
}

type exportCmd struct {
	Out string `type:"path" help:"Output path (defaults to stdout)."`
}

func (cmd *exportCmd) Run(ctx context.Context, c *cli) error {
	svc, cleanup, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out := os.Stdout
	if cmd.Out != "" {
		f, err := os.Create(cmd.Out) //nolint:gosec
		if err != nil {
			return fmt.Errorf("layoutctl: create %s: %w", cmd.Out, err)
		}
		defer f.Close()
		out = f
	}
	return svc.Porter().Export(out)
}

type importCmd struct {
	File string `arg:"" type:"path" help:"Path to an exported layout document."`
}

func (cmd *importCmd) Run(ctx context.Context, c *cli) error {
	svc, cleanup, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := os.Open(cmd.File) //nolint:gosec
	if err != nil {
		return fmt.Errorf("layoutctl: open %s: %w", cmd.File, err)
	}
	defer f.Close()

	result := svc.Porter().Import(ctx, f)
	if !result.Success {
		return errors.New(result.Error)
	}
	fmt.Println("layout imported")
	return nil
}

type presetsCmd struct{}

func (cmd *presetsCmd) Run(ctx context.Context, c *cli) error {
	svc, cleanup, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.Presets().Load(ctx); err != nil {
		return err
	}
	for _, preset := range svc.Presets().Builtins() {
		fmt.Printf("%-24s %s (built-in)\n", preset.ID, preset.Name)
	}
	for _, preset := range svc.Presets().UserPresets() {
		fmt.Printf("%-24s %s\n", preset.ID, preset.Name)
	}
	return nil
}

type applyCmd struct {
	Preset string `arg:"" help:"Preset id to apply."`
}

func (cmd *applyCmd) Run(ctx context.Context, c *cli) error {
	svc, cleanup, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.Presets().Load(ctx); err != nil {
		return err
	}
	if err := svc.Presets().Apply(ctx, cmd.Preset); err != nil {
		return err
	}
	fmt.Printf("applied preset %s\n", cmd.Preset)
	return nil
}

type resetCmd struct {
	Yes bool `help:"Skip the confirmation prompt."`
}

func (cmd *resetCmd) Run(ctx context.Context, c *cli) error {
	if !cmd.Yes {
		return errors.New("layoutctl: reset discards all customizations, re-run with --yes")
	}
	svc, cleanup, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc.Store().ResetToDefaults(ctx)
	fmt.Println("layout reset to defaults")
	return nil
}

type scaffoldCmd struct {
	ID           string `help:"Widget id (kebab-case, derived from --label when omitted)."`
	Label        string `required:"" help:"Display label for the widget."`
	Icon         string `help:"Icon name recorded in the manifest."`
	Static       bool   `help:"Mark the widget static (never polls)."`
	LiveKey      string `name:"live-key" help:"Push topic covering this widget."`
	ManifestPath string `required:"" type:"path" help:"Manifest YAML file to create or update."`
	Overwrite    bool   `help:"Replace an existing entry with the same id."`
}

func (cmd *scaffoldCmd) Run(_ context.Context, _ *cli) error {
	id := cmd.ID
	if id == "" {
		id = strcase.ToKebab(cmd.Label)
	}
	if !isKebab(id) {
		return fmt.Errorf("layoutctl: widget id %q must be kebab-case", id)
	}

	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("layoutctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}

	entry := layout.Descriptor{
		ID:      id,
		Label:   cmd.Label,
		Icon:    cmd.Icon,
		Static:  cmd.Static,
		LiveKey: cmd.LiveKey,
	}
	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].ID != id {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("layoutctl: manifest already defines widget %s (use --overwrite to replace)", id)
		}
		doc.Widgets[idx] = entry
		replaced = true
		break
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, entry)
	}

	if err := layout.WriteManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Printf("wrote widget %s to %s\n", id, manifestPath)
	return nil
}

func loadOrInitManifest(path string) (*layout.WidgetManifest, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &layout.WidgetManifest{Version: layout.ManifestVersion}, nil
	}
	return layout.ReadManifest(path)
}

func isKebab(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return !strings.HasPrefix(id, "-") && !strings.HasSuffix(id, "-")
}
