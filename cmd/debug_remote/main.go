package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"bulk-manager/core/config"
	"bulk-manager/core/reconcile"
	"bulk-manager/core/remote"
)

// Usage: debug_remote <entity-type> [field-id]
//
// Prints the first page of a listing and, with a field id, that field's value on every
// entity of the page.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: debug_remote <entity-type> [field-id]")
	}
	entityType := os.Args[1]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}
	client, err := remote.New(cfg.Remote, nil)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	fmt.Printf("=== First page of %s ===\n", entityType)
	page, err := client.ListPage(ctx, entityType, "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Records: %d, next cursor: %q\n", len(page.Items), page.Next)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, rec := range page.Items {
		_ = enc.Encode(rec)
	}

	if len(os.Args) < 3 {
		return
	}
	fieldID := os.Args[2]

	fmt.Printf("\n=== Field %s ===\n", fieldID)
	ids := make([]string, len(page.Items))
	for i, rec := range page.Items {
		ids[i] = rec.ID
	}
	values, err := client.GetBatchFieldValues(ctx, ids, fieldID)
	if err != nil {
		log.Fatal(err)
	}
	for _, id := range ids {
		fv := values[id]
		switch {
		case fv.Err != nil:
			fmt.Printf("%s: ERROR %s\n", id, reconcile.SanitizeMessage(fv.Err.Error()))
		case !fv.HasValue:
			fmt.Printf("%s: (empty)\n", id)
		default:
			fmt.Printf("%s: %s\n", id, fv.Value.Display())
		}
	}
}
