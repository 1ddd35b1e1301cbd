package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/caseconductor/ccstore/internal/model"
	"github.com/caseconductor/ccstore/internal/repository/postgres"
)

var deletedCmd = &cobra.Command{
	Use:   "deleted <table>",
	Short: "List soft-deleted records of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blank, err := blankFor(args[0])
		if err != nil {
			return err
		}
		recs, err := store.ListRecordsAny(cmd.Context(), blank, postgres.Cond{})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDELETED ON\tDELETED BY")
		for _, rec := range recs {
			m := rec.RecordMeta()
			if m.Live() {
				continue
			}
			by := "-"
			if m.DeletedBy != nil {
				by = m.DeletedBy.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.DeletedOn.Format("2006-01-02 15:04:05"), by)
		}
		return w.Flush()
	},
}

var undeleteCmd = &cobra.Command{
	Use:   "undelete <table> <id>",
	Short: "Restore a soft-deleted record and its deletion batch",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := loadAny(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		if rec.RecordMeta().Live() {
			return fmt.Errorf("%s %s is not deleted", args[0], args[1])
		}
		if err := store.UndeleteRecord(cmd.Context(), rec); err != nil {
			return err
		}
		fmt.Printf("restored %s %s\n", args[0], args[1])
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge <table> <id>",
	Short: "Permanently delete a record (irreversible)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := loadAny(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		if err := store.PurgeRecord(cmd.Context(), rec); err != nil {
			return err
		}
		fmt.Printf("purged %s %s\n", args[0], args[1])
		return nil
	},
}

// blankFor maps a table name argument to a zero-record constructor.
func blankFor(table string) (func() model.Record, error) {
	if _, ok := model.Blank(table); !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return func() model.Record {
		rec, _ := model.Blank(table)
		return rec
	}, nil
}

// loadAny fetches a record by table and id, deleted records included.
func loadAny(cmd *cobra.Command, table, rawID string) (model.Record, error) {
	rec, ok := model.Blank(table)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	id, err := uuid.FromString(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse id %q: %w", rawID, err)
	}
	if err := store.GetRecordAny(cmd.Context(), rec, id); err != nil {
		return nil, err
	}
	return rec, nil
}
