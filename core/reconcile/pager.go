package reconcile

import (
	"context"
)

// Listing is the drained content of a remote listing.
type Listing struct {
	// Records in the order the remote system returned them.
	Records []Record

	// Pages is the number of pages successfully read.
	Pages int

	// Partial is set when a page after the first failed.
	Partial bool

	// Err is the *PageFetchError behind Partial.
	Err error
}

// FetchAll drains every page of entityType. Pages are read one after another so cursor
// chaining stays correct.
//
// A failure on the first page returns a *SourceUnavailableError. A failure on a later
// page returns the records gathered so far with Partial set; the caller decides whether
// partial data is usable. FetchAll never retries.
func FetchAll(ctx context.Context, lister Lister, entityType string) (*Listing, error) {
	listing := &Listing{Records: []Record{}}
	seen := make(map[Cursor]struct{})

	var cursor Cursor
	for {
		if err := ctx.Err(); err != nil {
			if listing.Pages == 0 {
				return nil, err
			}
			listing.Partial = true
			listing.Err = &PageFetchError{EntityType: entityType, Page: listing.Pages + 1, Collected: len(listing.Records), Err: err}
			return listing, nil
		}

		page, err := lister.ListPage(ctx, entityType, cursor)
		if err != nil {
			if listing.Pages == 0 {
				return nil, &SourceUnavailableError{EntityType: entityType, Err: err}
			}
			listing.Partial = true
			listing.Err = &PageFetchError{
				EntityType: entityType,
				Page:       listing.Pages + 1,
				Collected:  len(listing.Records),
				Err:        err,
			}
			return listing, nil
		}

		listing.Pages++
		listing.Records = append(listing.Records, page.Items...)

		if page.Next == "" {
			return listing, nil
		}
		// A repeated cursor would loop forever.
		if _, dup := seen[page.Next]; dup {
			return listing, nil
		}
		seen[page.Next] = struct{}{}
		cursor = page.Next
	}
}
