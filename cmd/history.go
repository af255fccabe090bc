package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docchat/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage conversation history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded turns, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete recorded turns for a user, or for everyone",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a single turn",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyListCmd.Flags().String("user", "", "only show turns of this user")
	historyListCmd.Flags().Bool("json", false, "output turns as JSON")
	historyClearCmd.Flags().String("user", "", "only clear turns of this user")

	historyCmd.AddCommand(historyListCmd, historyClearCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	turns, err := a.history.List(context.Background(), user)
	if err != nil {
		return err
	}

	if jsonOutput {
		if turns == nil {
			turns = []history.Turn{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(turns)
	}

	if len(turns) == 0 {
		fmt.Println("No conversation history.")
		return nil
	}
	for _, t := range turns {
		fmt.Printf("[%s] %s (%s)\nQ: %s\nA: %s\n\n", t.AskedAt.Format("2006-01-02 15:04"), t.UserID, t.ID, t.Question, t.Answer)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.history.Clear(context.Background(), user)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d turn(s)\n", n)
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	deleted, err := a.history.Delete(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("turn %s not found", args[0])
	}
	fmt.Printf("Deleted turn %s\n", args[0])
	return nil
}
