package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spaceai/spaceai/internal/payload"
	"github.com/spaceai/spaceai/internal/security"
	"github.com/spaceai/spaceai/internal/state"
)

type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Usage() string
	Execute(ctx context.Context, r *REPL, args []string) error
}

func (r *REPL) registerCommands() {
	r.order = []Command{
		&GenerateCommand{},
		&EditCommand{},
		&UpscaleCommand{},
		&UploadCommand{},
		&SelectCommand{},
		&ShowCommand{},
		&ExportCommand{},
		&HistoryCommand{},
		&PromptsCommand{},
		&ResolutionCommand{},
		&AspectCommand{},
		&CancelCommand{},
		&KeyCommand{},
		&HelpCommand{},
		&QuitCommand{},
	}

	for _, cmd := range r.order {
		r.commands[cmd.Name()] = cmd
		for _, alias := range cmd.Aliases() {
			r.commands[alias] = cmd
		}
	}
}

// GenerateCommand launches a text-to-image generation.
type GenerateCommand struct{}

func (c *GenerateCommand) Name() string        { return "generate" }
func (c *GenerateCommand) Aliases() []string   { return []string{"gen", "g"} }
func (c *GenerateCommand) Description() string { return "Generate a new image from a prompt" }
func (c *GenerateCommand) Usage() string       { return "generate <prompt>" }

func (c *GenerateCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	if err := r.ensureCredential(ctx); err != nil {
		return err
	}

	prompt := strings.Join(args, " ")
	st := r.manager.Snapshot()
	fmt.Fprintf(r.out, "Launching generation (%s, %s)...\n", st.Resolution, st.AspectRatio)

	if err := r.runOp(func() error { return r.manager.Generate(ctx, prompt) }, false); err != nil {
		return err
	}

	entry := r.manager.Snapshot().History[0]
	r.showInline(entry.Payload)
	fmt.Fprintf(r.out, "Generated [%s] %q\n", entry.Resolution, truncate(entry.Prompt, 60))
	return nil
}

// EditCommand transforms the selected image with a prompt.
type EditCommand struct{}

func (c *EditCommand) Name() string        { return "edit" }
func (c *EditCommand) Aliases() []string   { return []string{"e"} }
func (c *EditCommand) Description() string { return "Transform the selected image with a prompt" }
func (c *EditCommand) Usage() string       { return "edit <prompt>" }

func (c *EditCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	if r.manager.Snapshot().Selected == "" {
		return fmt.Errorf("no image selected - use 'generate', 'upload' or 'select' first")
	}
	if err := r.ensureCredential(ctx); err != nil {
		return err
	}

	prompt := strings.Join(args, " ")
	fmt.Fprintln(r.out, "Applying edit...")

	if err := r.runOp(func() error { return r.manager.Edit(ctx, prompt) }, false); err != nil {
		return err
	}

	entry := r.manager.Snapshot().History[0]
	r.showInline(entry.Payload)
	fmt.Fprintf(r.out, "%s\n", truncate(entry.Prompt, 70))
	fmt.Fprintln(r.out, "Still in edit mode; 'cancel' to leave.")
	return nil
}

// UpscaleCommand re-renders the selected image at 4K.
type UpscaleCommand struct{}

func (c *UpscaleCommand) Name() string        { return "upscale" }
func (c *UpscaleCommand) Aliases() []string   { return []string{"up", "u"} }
func (c *UpscaleCommand) Description() string { return "Re-render the selected image at 4K" }
func (c *UpscaleCommand) Usage() string       { return "upscale" }

func (c *UpscaleCommand) Execute(ctx context.Context, r *REPL, _ []string) error {
	if r.manager.Snapshot().Selected == "" {
		return fmt.Errorf("no image selected - use 'generate', 'upload' or 'select' first")
	}
	if err := r.ensureCredential(ctx); err != nil {
		return err
	}

	fmt.Fprintln(r.out, "Upscaling to 4K...")

	if err := r.runOp(func() error { return r.manager.Upscale(ctx) }, true); err != nil {
		return err
	}

	entry := r.manager.Snapshot().History[0]
	r.showInline(entry.Payload)
	fmt.Fprintf(r.out, "%s\n", truncate(entry.Prompt, 70))
	fmt.Fprintln(r.out, "Resolution is now 4K for subsequent generations.")
	return nil
}

// UploadCommand loads a local image as the selection and enters edit
// mode.
type UploadCommand struct{}

func (c *UploadCommand) Name() string        { return "upload" }
func (c *UploadCommand) Aliases() []string   { return []string{"load"} }
func (c *UploadCommand) Description() string { return "Load a local image file for editing" }
func (c *UploadCommand) Usage() string       { return "upload <file>" }

func (c *UploadCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	p, err := payload.FromFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	r.manager.Upload(p)
	r.showInline(p)
	r.accent.Fprintln(r.out, "Edit mode: prompts now transform the loaded image.")
	return nil
}

// SelectCommand makes a history entry the active image.
type SelectCommand struct{}

func (c *SelectCommand) Name() string        { return "select" }
func (c *SelectCommand) Aliases() []string   { return []string{"sel"} }
func (c *SelectCommand) Description() string { return "Select a history entry for editing" }
func (c *SelectCommand) Usage() string       { return "select <n>" }

func (c *SelectCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	position, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid position: %s", args[0])
	}

	entry, err := r.manager.Select(position)
	if err != nil {
		return err
	}

	r.showInline(entry.Payload)
	fmt.Fprintf(r.out, "Selected [%d] %q\n", position, truncate(entry.Prompt, 60))
	r.accent.Fprintln(r.out, "Edit mode: prompts now transform the selected image.")
	return nil
}

// ShowCommand renders the selected image inline.
type ShowCommand struct{}

func (c *ShowCommand) Name() string        { return "show" }
func (c *ShowCommand) Aliases() []string   { return []string{"display", "view"} }
func (c *ShowCommand) Description() string { return "Display the selected image" }
func (c *ShowCommand) Usage() string       { return "show" }

func (c *ShowCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	st := r.manager.Snapshot()
	if st.Selected == "" {
		return fmt.Errorf("no image selected")
	}
	if r.displayer == nil {
		return fmt.Errorf("this terminal cannot display images inline - use 'export' instead")
	}
	return r.displayer.Show(st.Selected)
}

// ExportCommand writes the selected image to disk.
type ExportCommand struct{}

func (c *ExportCommand) Name() string        { return "export" }
func (c *ExportCommand) Aliases() []string   { return []string{"save", "s"} }
func (c *ExportCommand) Description() string { return "Save the selected image to a file" }
func (c *ExportCommand) Usage() string       { return "export [filename]" }

func (c *ExportCommand) Execute(_ context.Context, r *REPL, args []string) error {
	var dest string
	if len(args) > 0 {
		dest = args[0]
		if err := security.ValidateExportPath(dest); err != nil {
			return fmt.Errorf("invalid export path: %w", err)
		}
	}

	path, err := r.manager.Export(dest)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "Saved: %s\n", path)
	return nil
}

// HistoryCommand lists generated images, newest first.
type HistoryCommand struct{}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Aliases() []string   { return []string{"h", "hist"} }
func (c *HistoryCommand) Description() string { return "List generated images, newest first" }
func (c *HistoryCommand) Usage() string       { return "history" }

func (c *HistoryCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	st := r.manager.Snapshot()
	if len(st.History) == 0 {
		fmt.Fprintln(r.out, "No images yet")
		return nil
	}

	for i, img := range st.History {
		marker := "  "
		if img.Payload == st.Selected {
			marker = "> "
		}
		fmt.Fprintf(r.out, "%s[%d] %s %-3s %q\n",
			marker,
			i+1,
			img.Timestamp.Format("2006-01-02 15:04:05"),
			img.Resolution,
			truncate(img.Prompt, 50))
	}

	return nil
}

// PromptsCommand lists the recent prompt history.
type PromptsCommand struct{}

func (c *PromptsCommand) Name() string        { return "prompts" }
func (c *PromptsCommand) Aliases() []string   { return []string{"p"} }
func (c *PromptsCommand) Description() string { return "List recent prompts, newest first" }
func (c *PromptsCommand) Usage() string       { return "prompts" }

func (c *PromptsCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	st := r.manager.Snapshot()
	if len(st.PromptHistory) == 0 {
		fmt.Fprintln(r.out, "No prompts yet")
		return nil
	}

	for i, p := range st.PromptHistory {
		fmt.Fprintf(r.out, "[%d] %s\n", i+1, truncate(p, 70))
	}

	return nil
}

// ResolutionCommand gets or sets the working resolution.
type ResolutionCommand struct{}

func (c *ResolutionCommand) Name() string        { return "resolution" }
func (c *ResolutionCommand) Aliases() []string   { return []string{"res"} }
func (c *ResolutionCommand) Description() string { return "Get or set the output resolution" }
func (c *ResolutionCommand) Usage() string       { return "resolution [1K|2K|4K]" }

func (c *ResolutionCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Current resolution: %s (valid: %v)\n",
			r.manager.Snapshot().Resolution, state.ValidResolutions())
		return nil
	}

	res := state.Resolution(strings.ToUpper(args[0]))
	if err := r.manager.SetResolution(res); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Resolution set to: %s\n", res)
	return nil
}

// AspectCommand gets or sets the aspect ratio.
type AspectCommand struct{}

func (c *AspectCommand) Name() string        { return "aspect" }
func (c *AspectCommand) Aliases() []string   { return []string{"ar"} }
func (c *AspectCommand) Description() string { return "Get or set the aspect ratio" }
func (c *AspectCommand) Usage() string       { return "aspect [1:1|16:9|9:16|4:3|3:4]" }

func (c *AspectCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Current aspect ratio: %s (valid: %v)\n",
			r.manager.Snapshot().AspectRatio, state.ValidAspectRatios())
		return nil
	}

	ar := state.AspectRatio(args[0])
	if err := r.manager.SetAspectRatio(ar); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Aspect ratio set to: %s\n", ar)
	return nil
}

// CancelCommand leaves edit mode.
type CancelCommand struct{}

func (c *CancelCommand) Name() string        { return "cancel" }
func (c *CancelCommand) Aliases() []string   { return []string{"c"} }
func (c *CancelCommand) Description() string { return "Leave edit mode" }
func (c *CancelCommand) Usage() string       { return "cancel" }

func (c *CancelCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	if !r.manager.Snapshot().Editing {
		fmt.Fprintln(r.out, "Not in edit mode")
		return nil
	}
	r.manager.CancelEdit()
	fmt.Fprintln(r.out, "Left edit mode; prompts generate fresh images again.")
	return nil
}

// KeyCommand re-runs key selection.
type KeyCommand struct{}

func (c *KeyCommand) Name() string        { return "key" }
func (c *KeyCommand) Aliases() []string   { return []string{} }
func (c *KeyCommand) Description() string { return "Select or replace the API key" }
func (c *KeyCommand) Usage() string       { return "key" }

func (c *KeyCommand) Execute(ctx context.Context, r *REPL, _ []string) error {
	if err := r.selector.OpenSelector(ctx); err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Key confirmed.")
	return nil
}

// HelpCommand shows available commands.
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"?"} }
func (c *HelpCommand) Description() string { return "Show available commands" }
func (c *HelpCommand) Usage() string       { return "help" }

func (c *HelpCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	fmt.Fprintln(r.out, "Available commands:")
	fmt.Fprintln(r.out)

	for _, cmd := range r.order {
		aliases := ""
		if len(cmd.Aliases()) > 0 {
			aliases = fmt.Sprintf(" (%s)", strings.Join(cmd.Aliases(), ", "))
		}
		fmt.Fprintf(r.out, "  %-14s%s\n", cmd.Name()+aliases, cmd.Description())
		fmt.Fprintf(r.out, "                 Usage: %s\n", cmd.Usage())
	}

	return nil
}

// QuitCommand exits the console.
type QuitCommand struct{}

func (c *QuitCommand) Name() string        { return "quit" }
func (c *QuitCommand) Aliases() []string   { return []string{"exit", "q"} }
func (c *QuitCommand) Description() string { return "Exit the console" }
func (c *QuitCommand) Usage() string       { return "quit" }

func (c *QuitCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	fmt.Fprintln(r.out, "Returning to base. Goodbye!")
	r.Stop()
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
