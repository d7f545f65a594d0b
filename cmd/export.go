package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal/export"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	exportFormat   string
	exportOut      string
	exportSanitize bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Export a project's conversation to a file",
	Long: `Export a parsed conversation in one of several formats (json, jsonl, yaml, md).

Exports are sanitized by default: user and project paths in message content
are replaced with placeholders. Disable with --sanitize=false.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		project, err := internal.FindProject(cfg.ProjectsDir, args[0])
		if err != nil {
			return fmt.Errorf("project not found: %s", args[0])
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		service := internal.NewConversationService(cfg)
		conv, err := service.Load(project.Path, true)
		if err != nil {
			return err
		}

		if exportSanitize {
			sanitizer := internal.NewSanitizer(true, cfg.SanitizeRules)
			conv.Messages = sanitizer.SanitizeMessages(conv.Messages)
			builder := internal.NewTreeBuilder(conv.Messages)
			conv.Tree = builder.Build()
		}

		outPath := exportOut
		if outPath == "" {
			outPath = fmt.Sprintf("%s_conversation_%s.%s",
				project.Name, uuid.NewString()[:8], exporter.Extension())
		}
		if dir := filepath.Dir(outPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()

		doc := export.NewDocument(project, conv)
		if err := exporter.Export(doc, f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported %d messages to %s\n", len(conv.Messages), outPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json, jsonl, yaml, md")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default <project>_conversation_<id>.<ext>)")
	exportCmd.Flags().BoolVar(&exportSanitize, "sanitize", true, "Redact user and project paths")
	rootCmd.AddCommand(exportCmd)
}
