// Package pipeline implements the CLI entry points tying the font packages
// together: descriptor registration, per-provider CSS generation, mirroring
// and hand-off to the stylesheet queue.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"wfp/font"
	"wfp/state"
)

// StylesheetHandle identifies the generated stylesheet in the queue.
const StylesheetHandle = "wfp-fonts"

// Render registers the descriptors from SOURCE, produces @font-face CSS for
// every provider that has fonts, mirrors referenced files and writes the
// final CSS to DESTINATION (stdout when absent). Scheduled downloads run
// after the output has been produced.
func Render(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("no source file specified")
	}
	srcPath := cmd.Args().Get(0)

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("unable to read descriptors from '%s': %w", srcPath, err)
	}
	var descriptors []map[string]any
	if err := yaml.Unmarshal(data, &descriptors); err != nil {
		return fmt.Errorf("unable to parse descriptors from '%s': %w", srcPath, err)
	}

	registered := 0
	for _, d := range descriptors {
		if key := env.Fonts.Register(d); key != "" {
			registered++
		}
	}
	env.Log.Info("Registered fonts", zap.Int("requested", len(descriptors)), zap.Int("accepted", registered))

	cssText := collectCSS(ctx, env)
	final := env.Mirror.GetCSS(cssText)

	env.Queue.Register(StylesheetHandle, "", nil, "1", "all")
	env.Queue.AddInline(StylesheetHandle, final)
	env.Queue.Enqueue(StylesheetHandle)

	if err := writeOutput(cmd.Args().Get(1), final); err != nil {
		return err
	}

	// deferred phase: downloads must not delay the output above
	if err := env.Mirror.Drain(ctx); err != nil {
		env.Log.Warn("Some font downloads failed", zap.Error(err))
	}
	return nil
}

// Mirror rewrites the CSS in SOURCE to reference locally mirrored copies and
// writes it to DESTINATION (stdout when absent).
func Mirror(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("no source file specified")
	}
	srcPath := cmd.Args().Get(0)

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("unable to read stylesheet '%s': %w", srcPath, err)
	}

	final := env.Mirror.GetCSS(string(data))

	if err := writeOutput(cmd.Args().Get(1), final); err != nil {
		return err
	}
	if err := env.Mirror.Drain(ctx); err != nil {
		env.Log.Warn("Some font downloads failed", zap.Error(err))
	}
	return nil
}

// collectCSS asks every provider for the CSS of its registered fonts,
// concatenating in provider registration order. Keys are sorted within a
// provider for deterministic output.
func collectCSS(ctx context.Context, env *state.LocalEnv) string {
	var out string
	for _, name := range env.Providers.Names() {
		p, _ := env.Providers.Get(name)
		byKey := env.Fonts.ByProvider(name)
		if len(byKey) == 0 {
			continue
		}

		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fonts := make([]font.Descriptor, 0, len(keys))
		for _, k := range keys {
			fonts = append(fonts, byKey[k])
		}

		css := p.GetFontsCollectionCSS(ctx, fonts)
		env.Log.Debug("Generated provider CSS", zap.String("provider", name), zap.Int("fonts", len(fonts)), zap.Int("bytes", len(css)))
		out += css
	}
	return out
}

func writeOutput(dest, content string) error {
	if dest == "" {
		_, err := os.Stdout.WriteString(content)
		return err
	}
	if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
		return fmt.Errorf("unable to write output '%s': %w", dest, err)
	}
	return nil
}
