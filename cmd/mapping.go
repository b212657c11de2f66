package cmd

import (
	"fmt"
	"os"
	"strings"

	"bulk-manager/core/mapping"
	"bulk-manager/core/tabular"

	"github.com/spf13/cobra"
)

var mappingEntityType string

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Work with mapping files",
}

var mappingInitCmd = &cobra.Command{
	Use:   "init <csv>",
	Short: "Print a mapping skeleton for a CSV header",
	Long: `Reads the header row of a CSV and prints a mapping with one entry per column.
Columns whose name matches a reserved target (name, domain, uuid, owner, parent,
description, tags) are pre-mapped; every other column is left unmapped.`,
	Args: cobra.ExactArgs(1),
	RunE: runMappingInit,
}

var mappingCheckCmd = &cobra.Command{
	Use:   "check <mapping>",
	Short: "Validate a mapping file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := mapping.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ok: %d columns, %d custom fields, %d rules\n", len(m.Columns), len(m.CustomFieldIDs()), len(m.Rules))
		return nil
	},
}

func init() {
	mappingInitCmd.Flags().StringVar(&mappingEntityType, "entity-type", "", "Entity type written into the mapping")
	mappingCmd.AddCommand(mappingInitCmd, mappingCheckCmd)
	RootCmd.AddCommand(mappingCmd)
}

func runMappingInit(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	table := tabular.ParseTable(string(data))

	m := mapping.Mapping{EntityType: mappingEntityType}
	for _, col := range table.Columns {
		entry := mapping.ColumnMapping{CSVColumn: col}
		if target := strings.ToLower(strings.TrimSpace(col)); mapping.IsReserved(target) {
			entry.MappedTo = mapping.Target(target)
		}
		m.Columns = append(m.Columns, entry)
	}

	out, err := mapping.Marshal(m)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
