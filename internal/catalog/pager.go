package catalog

import "context"

// fetchAll walks numbered pages starting at 1 until maxPages or the
// reported page count is reached, whichever comes first.
// fetch returns the items of a page and the total page count.
func fetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, page int) ([]T, int, error),
	maxPages int,
	onProgress func(loaded, total int),
) ([]T, int, error) {
	if maxPages <= 0 {
		maxPages = defaultSyncPages
	}

	var all []T
	page := 0

	for page < maxPages {
		select {
		case <-ctx.Done():
			return all, page, ctx.Err()
		default:
		}

		items, totalPages, err := fetch(ctx, page+1)
		if err != nil {
			return all, page, err
		}
		page++
		all = append(all, items...)

		last := min(maxPages, totalPages)
		if onProgress != nil {
			onProgress(page, max(last, page))
		}

		if page >= totalPages || len(items) == 0 {
			break
		}
	}

	return all, page, nil
}
