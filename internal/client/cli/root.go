package cli

import (
	"bufio"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
)

// NewRootCommand builds the command tree over app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "cardkeeper",
		Short:         "Loyalty card wallet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(app.in)
	root.SetOut(app.out)

	root.AddCommand(
		newEditCommand(app),
		newListCommand(app),
		newGroupsCommand(app),
		newRenderCommand(app),
		newShareCommand(app),
		newRecentCommand(app),
	)
	return root
}

func newEditCommand(app *App) *cobra.Command {
	var req models.LoadRequest
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Create or edit a card interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Edit(cmd.Context(), req)
		},
	}
	cmd.Flags().Int64Var(&req.ID, "id", 0, "card to edit; a new card when omitted")
	cmd.Flags().StringVar(&req.ImportRef, "import", "", "import a card from a share link")
	cmd.Flags().BoolVar(&req.Duplicate, "duplicate", false, "edit a copy of --id as a new card")
	return cmd
}

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.List(cmd.Context())
		},
	}
}

func newGroupsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Groups(cmd.Context())
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Create a group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return app.AddGroup(cmd.Context(), args[0])
			}
			name, err := GetSimpleText(bufio.NewReader(app.in), "Group name?", app.out)
			if err != nil {
				return err
			}
			return app.AddGroup(cmd.Context(), name)
		},
	})
	return cmd
}

func newRenderCommand(app *App) *cobra.Command {
	opts := RenderOptions{Symbology: "CODE_128", Width: 300, Height: 150, Output: "barcode.png"}
	cmd := &cobra.Command{
		Use:   "render <value>",
		Short: "Render a barcode to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Payload = args[0]
			return app.Render(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.Symbology, "type", "t", opts.Symbology, "barcode type")
	f.IntVar(&opts.Width, "width", opts.Width, "width in dp")
	f.IntVar(&opts.Height, "height", opts.Height, "height in dp")
	f.StringVarP(&opts.Output, "out", "o", opts.Output, "output file")
	f.BoolVar(&opts.Fallback, "fallback", false, "draw a placeholder when the value cannot be encoded")
	f.BoolVar(&opts.Fullscreen, "fullscreen", false, "scale to the full screen width")
	return cmd
}

func newShareCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "share <id>",
		Short: "Print the import link of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			return app.Share(cmd.Context(), id)
		},
	}
}

func newRecentCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently saved cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Recent(cmd.Context())
		},
	}
}
