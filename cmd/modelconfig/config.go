package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/nebari-dev/modelconfig/internal/configstore"
	"github.com/nebari-dev/modelconfig/internal/db"
	"github.com/nebari-dev/modelconfig/internal/server"
	"github.com/nebari-dev/modelconfig/internal/valuetype"
	"github.com/spf13/cobra"
)

var (
	configUser   string
	configType   string
	configFormat string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write a user's configuration",
	Long: `Read and write configuration entries directly in the database, applying the
same key rules and hooks as the API.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's configuration entries",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value stored under key as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Create or overwrite an entry",
	Long: `Create or overwrite an entry. array and json values are given as JSON.

Examples:
  modelconfig config set theme dark --user alice
  modelconfig config set retries 3 --user alice --type int
  modelconfig config set tags '["a","b"]' --user alice --type array`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigDelete,
}

var configImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import entries from a YAML or TOML file",
	Long: `Import entries from a YAML or TOML file. Each top-level key is either a
{type, value} table or a bare value whose type is inferred.

Example file:
  theme: dark
  retries: 3
  launch:
    type: date
    value: "2025-01-02 03:04:05"`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigImport,
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's entries as YAML or TOML",
	Args:  cobra.NoArgs,
	RunE:  runConfigExport,
}

func init() {
	configCmd.PersistentFlags().StringVarP(&configUser, "user", "u", "", "Owner username (required)")
	_ = configCmd.MarkPersistentFlagRequired("user")

	configSetCmd.Flags().StringVarP(&configType, "type", "t", string(valuetype.String), "Value type: string, int, float, bool, array, json, date")
	configImportCmd.Flags().StringVarP(&configFormat, "format", "f", "", "File format: yaml or toml (default: from extension)")
	configExportCmd.Flags().StringVarP(&configFormat, "format", "f", "yaml", "Output format: yaml or toml")

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configDeleteCmd)
	configCmd.AddCommand(configImportCmd)
	configCmd.AddCommand(configExportCmd)
}

// openOwner opens the store and binds it to the --user owner.
func openOwner() (configstore.Accessor, func(), error) {
	cfg, database, err := server.Bootstrap(configFile)
	if err != nil {
		return nil, nil, err
	}
	user, err := db.FindUser(database, configUser)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, nil, fmt.Errorf("user %q not found", configUser)
		}
		return nil, nil, err
	}
	stack, err := server.NewStack(cfg, database)
	if err != nil {
		return nil, nil, err
	}
	return stack.Bind(user), func() { stack.Close() }, nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	acc, done, err := openOwner()
	if err != nil {
		return err
	}
	defer done()

	entries, err := acc.Entries(cmd.Context())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No configuration entries.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tTYPE\tVALUE\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Key, e.Type, string(e.Value), e.UpdatedAt.Format(valuetype.DateLayout))
	}
	return w.Flush()
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	acc, done, err := openOwner()
	if err != nil {
		return err
	}
	defer done()

	ctx := cmd.Context()
	tag, err := acc.Type(ctx, args[0])
	if err != nil {
		if errors.Is(err, configstore.ErrNotFound) {
			return fmt.Errorf("no configuration %q for user %q", args[0], configUser)
		}
		return err
	}
	v, err := acc.Value(ctx, args[0])
	if err != nil {
		return err
	}
	out, err := json.Marshal(tag.Storable(v))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	tag, err := valuetype.Parse(configType)
	if err != nil {
		return err
	}
	value, err := cliValue(args[1], tag)
	if err != nil {
		return err
	}

	acc, done, err := openOwner()
	if err != nil {
		return err
	}
	defer done()

	entry, created, err := acc.Put(cmd.Context(), args[0], value, tag)
	if err != nil {
		return err
	}
	verb := "Updated"
	if created {
		verb = "Created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s (%s)\n", verb, entry.Key, string(entry.Value), entry.Type)
	return nil
}

// cliValue interprets a command-line argument for tag. array and json values
// must be JSON; everything else is coerced from the string.
func cliValue(arg string, tag valuetype.Type) (any, error) {
	if tag != valuetype.Array && tag != valuetype.JSON {
		return arg, nil
	}
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err != nil {
		return nil, fmt.Errorf("%s values must be valid JSON: %w", tag, err)
	}
	return v, nil
}

func runConfigDelete(cmd *cobra.Command, args []string) error {
	acc, done, err := openOwner()
	if err != nil {
		return err
	}
	defer done()

	if err := acc.Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, configstore.ErrNotFound) {
			return fmt.Errorf("no configuration %q for user %q", args[0], configUser)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func runConfigImport(cmd *cobra.Command, args []string) error {
	format, err := formatFor(configFormat, args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	entries, err := parseEntries(data, format)
	if err != nil {
		return err
	}

	acc, done, err := openOwner()
	if err != nil {
		return err
	}
	defer done()

	n, err := importEntries(cmd.Context(), acc, entries)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d entries\n", n, len(entries))
	return err
}

// importEntries writes entries in order and stops at the first failure.
func importEntries(ctx context.Context, acc configstore.Accessor, entries []fileEntry) (int, error) {
	for i, e := range entries {
		if _, _, err := acc.Put(ctx, e.Key, e.Value, valuetype.Type(e.Type)); err != nil {
			return i, fmt.Errorf("import %q: %w", e.Key, err)
		}
	}
	return len(entries), nil
}

func runConfigExport(cmd *cobra.Command, args []string) error {
	format, err := formatFor(configFormat, "")
	if err != nil {
		return err
	}

	acc, done, err := openOwner()
	if err != nil {
		return err
	}
	defer done()

	stored, err := acc.Entries(cmd.Context())
	if err != nil {
		return err
	}
	entries, err := exportEntries(stored, configstore.Decode)
	if err != nil {
		return err
	}
	out, err := encodeEntries(entries, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
