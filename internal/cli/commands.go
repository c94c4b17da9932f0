package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/hanzi/internal/phrase"
	"codeberg.org/snonux/hanzi/internal/processor"
)

// runWithProcessor opens the application for one command run and hands the
// processor to fn
func runWithProcessor(cmd *cobra.Command, withClient bool, fn func(ctx context.Context, p *processor.Processor) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx, LoadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.processor(ctx, cmd.OutOrStdout(), withClient)
	if err != nil {
		return err
	}
	return fn(ctx, p)
}

func newQueryCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query TEXT",
		Short: "Translate a phrase with the LLM",
		Long:  "Translate a phrase with the LLM. Press Ctrl-C to cancel a running query.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithProcessor(cmd, true, func(ctx context.Context, p *processor.Processor) error {
				_, err := p.ProcessQuery(ctx, strings.Join(args, " "), flags.Save)
				return err
			})
		},
	}
	cmd.Flags().BoolVarP(&flags.Save, "save", "s", false, "Save the translated phrase")
	return cmd
}

func newSearchCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "search [TERM]",
		Short: "Search saved phrases",
		Long:  "Search saved phrases by original text, translation or pronunciation. Without a term all phrases are listed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) > 0 {
				term = args[0]
			}
			return runWithProcessor(cmd, false, func(ctx context.Context, p *processor.Processor) error {
				_, err := p.Search(ctx, term)
				return err
			})
		},
	}
}

func newSaveCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a phrase entered by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ph := phrase.Phrase{
				Original:      flags.Original,
				Pronunciation: flags.Pronunciation,
				Translation:   flags.Translation,
				Language: phrase.Language{
					Code: flags.LanguageCode,
					Name: flags.LanguageName,
				},
			}
			return runWithProcessor(cmd, false, func(ctx context.Context, p *processor.Processor) error {
				return p.Save(ctx, ph)
			})
		},
	}
	cmd.Flags().StringVar(&flags.Original, "original", "", "Original phrase")
	cmd.Flags().StringVar(&flags.Pronunciation, "pinyin", "", "Pronunciation")
	cmd.Flags().StringVar(&flags.Translation, "translation", "", "Translation")
	cmd.Flags().StringVar(&flags.LanguageCode, "language-code", "", "Language code (default from config)")
	cmd.Flags().StringVar(&flags.LanguageName, "language-name", "", "Language name")
	cmd.MarkFlagRequired("original")
	cmd.MarkFlagRequired("translation")
	return cmd
}

func newBatchCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "batch FILE",
		Short: "Import phrases from a file",
		Long: `Import phrases from a file, one per line:
  你好                    translated with the LLM, then saved
  你好 = hello            saved as given
  你好 [nǐ hǎo] = hello   saved as given, with pronunciation`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithProcessor(cmd, true, func(ctx context.Context, p *processor.Processor) error {
				return p.ProcessBatch(ctx, args[0])
			})
		},
	}
}

func newModelsCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the installed models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithProcessor(cmd, true, func(ctx context.Context, p *processor.Processor) error {
				return p.ListModels(ctx)
			})
		},
	}
}

func newUseModelCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "use-model NAME",
		Short: "Store the model queries should prefer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithProcessor(cmd, true, func(ctx context.Context, p *processor.Processor) error {
				return p.UseModel(ctx, args[0])
			})
		},
	}
}

func newExportCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved phrases as Anki CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithProcessor(cmd, false, func(ctx context.Context, p *processor.Processor) error {
				_, err := p.Export(ctx, flags.OutputFile)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Output CSV file (default hanzi_anki.csv)")
	return cmd
}

func newBackupCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the database into its archive directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithProcessor(cmd, false, func(ctx context.Context, p *processor.Processor) error {
				_, err := p.Backup(ctx)
				return err
			})
		},
	}
}
