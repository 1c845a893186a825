package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evcraddock/pagecomments/internal/auth"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage moderator keys of the local comments service",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a moderator key",
			Long:  "Create a moderator key. The key is printed once and cannot be shown again.",
			Args:  cobra.ExactArgs(1),
			RunE:  runKeyCreate,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List moderator keys",
			Args:  cobra.NoArgs,
			RunE:  runKeyList,
		},
		&cobra.Command{
			Use:   "revoke <id>",
			Short: "Revoke a moderator key",
			Args:  cobra.ExactArgs(1),
			RunE:  runKeyRevoke,
		},
	)

	return cmd
}

func openKeyStore() (*auth.APIKeyStore, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	database, err := openDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return auth.NewAPIKeyStore(database), func() { closeDB(database) }, nil
}

func runKeyCreate(cmd *cobra.Command, args []string) error {
	store, done, err := openKeyStore()
	if err != nil {
		return err
	}
	defer done()

	raw, key, err := store.Create(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, map[string]interface{}{"key": raw, "id": key.ID, "name": key.Name})
	}

	fmt.Fprintf(out, "Key #%d (%s) created:\n\n  %s\n\nStore it now, it will not be shown again.\n", key.ID, key.Name, raw)
	return nil
}

func runKeyList(cmd *cobra.Command, args []string) error {
	store, done, err := openKeyStore()
	if err != nil {
		return err
	}
	defer done()

	keys, err := store.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, keys)
	}
	if len(keys) == 0 {
		fmt.Fprintln(out, "No keys.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tPREFIX\tCREATED\tLAST USED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, k := range keys {
		lastUsed := "-"
		if k.LastUsedAt != nil {
			lastUsed = k.LastUsedAt.Format("2006-01-02 15:04")
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			k.ID, k.Name, k.KeyPrefix, k.CreatedAt.Format("2006-01-02 15:04"), lastUsed); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}

func runKeyRevoke(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid key ID: %s", args[0])
	}

	store, done, err := openKeyStore()
	if err != nil {
		return err
	}
	defer done()

	if err := store.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Key #%d revoked.\n", id)
	return nil
}

// moderatorKey returns the --key flag or PC_MODERATOR_KEY.
func moderatorKey(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("PC_MODERATOR_KEY")
}
