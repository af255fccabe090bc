package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docchat/internal/documents"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage the documents available for questions",
}

var documentsAddCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Register documents for ingestion",
	Long: `Registers one or more files for ingestion. With --dir, every file under the
directory matching the configured include patterns is registered.`,
	RunE: runDocumentsAdd,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a document and its processed records",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	documentsAddCmd.Flags().String("dir", "", "register every matching file under this directory")
	documentsAddCmd.Flags().String("description", "", "description stored with each document")
	documentsAddCmd.Flags().String("user", "", "uploader recorded with each document")
	documentsListCmd.Flags().Bool("json", false, "output documents as JSON")

	documentsCmd.AddCommand(documentsAddCmd, documentsListCmd, documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dir, _ := cmd.Flags().GetString("dir")
	description, _ := cmd.Flags().GetString("description")
	user, _ := cmd.Flags().GetString("user")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	paths := append([]string(nil), args...)
	if dir != "" {
		found, err := documents.Scan(dir, a.cfg.Include, a.cfg.Exclude)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", dir, err)
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files given; pass file paths or --dir")
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			fmt.Fprintf(os.Stderr, "Skipping %s: not a readable file\n", p)
			continue
		}
		doc, err := a.documents.Create(ctx, documents.SourceDocument{
			FilePath:    abs,
			Description: description,
			UploadedBy:  user,
		})
		if err != nil {
			return fmt.Errorf("registering %s: %w", p, err)
		}
		fmt.Printf("Registered %s (%s)\n", abs, doc.ID)
	}

	fmt.Println("\nRun `docchat ingest` to process the new documents.")
	return nil
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.documents.List(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		if docs == nil {
			docs = []documents.SourceDocument{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Println("No documents registered. Use `docchat documents add` to register some.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tUPLOADED\tPATH\tDESCRIPTION")
	for _, d := range docs {
		status := "pending"
		if d.Processed {
			status = "ingested"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, status, d.UploadedAt.Format("2006-01-02 15:04"), d.FilePath, d.Description)
	}
	return w.Flush()
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	deleted, err := a.documents.Delete(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("document %s not found", args[0])
	}
	fmt.Printf("Deleted document %s\n", args[0])
	return nil
}
