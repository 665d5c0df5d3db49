package notifier

import (
	"sort"
	"strings"

	"StockSentry/internal/model"
)

// ResolveRecipients flattens the audience records into a deduplicated,
// sorted address list. Both the single-address field and the list field of
// each active record contribute; inactive records are ignored.
func ResolveRecipients(records []model.Recipient) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if !r.Active {
			continue
		}
		if addr := strings.TrimSpace(r.Email); addr != "" {
			seen[addr] = struct{}{}
		}
		for _, e := range r.Emails {
			if addr := strings.TrimSpace(e); addr != "" {
				seen[addr] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for addr := range seen {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
