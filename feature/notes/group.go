package notes

import (
	"sort"
	"strings"

	"bulk-manager/core/reconcile"
)

// Engine names the engine in plans and reports.
const Engine = "dedupe_notes"

// Field names read from note records.
const (
	FieldContent = "content"
	FieldTitle   = "title"
	FieldCompany = "company"
)

// Group is one set of duplicate notes.
type Group struct {
	Key       string             `json:"key"`
	Title     string             `json:"title"`
	CompanyID string             `json:"company_id,omitempty"`
	Keep      reconcile.Record   `json:"keep"`
	Delete    []reconcile.Record `json:"delete"`
}

// DeleteIDs returns the ids of the notes to delete.
func (g Group) DeleteIDs() []string {
	ids := make([]string, len(g.Delete))
	for i, r := range g.Delete {
		ids[i] = r.ID
	}
	return ids
}

// CompanyID extracts the company reference of a note: the id of a {name}/{label} value,
// falling back to its display text when it carries no id, or the text of a scalar value.
func CompanyID(rec reconcile.Record) string {
	v := rec.Field(FieldCompany)
	switch v.Kind {
	case reconcile.KindNamed, reconcile.KindLabeled:
		if id := strings.TrimSpace(v.ID); id != "" {
			return id
		}
	}
	return strings.TrimSpace(v.Display())
}

type bucket struct {
	key       string
	companyID string
	members   []reconcile.Record
}

// FindGroups returns the duplicate sets among records in order of first appearance.
// Notes with blank content are never grouped.
func FindGroups(records []reconcile.Record) []Group {
	var (
		buckets   []*bucket
		byKey     = make(map[string]*bucket)
		firstByCT = make(map[string]*bucket)
		orphans   = make(map[string][]reconcile.Record)
		orphanCT  []string
	)

	for _, rec := range records {
		content := rec.Text(FieldContent)
		if content == "" {
			continue
		}
		ct := content + "\x00" + rec.Text(FieldTitle)
		company := CompanyID(rec)

		if company == "" {
			if _, seen := orphans[ct]; !seen {
				orphanCT = append(orphanCT, ct)
			}
			orphans[ct] = append(orphans[ct], rec)
			continue
		}

		key := ct + "\x00" + company
		b, ok := byKey[key]
		if !ok {
			b = &bucket{key: key, companyID: company}
			byKey[key] = b
			buckets = append(buckets, b)
			if _, taken := firstByCT[ct]; !taken {
				firstByCT[ct] = b
			}
		}
		b.members = append(b.members, rec)
	}

	// Company-less notes merge into the first company group with the same content and title.
	for _, ct := range orphanCT {
		if b, ok := firstByCT[ct]; ok {
			b.members = append(b.members, orphans[ct]...)
			continue
		}
		b := &bucket{key: ct, members: orphans[ct]}
		buckets = append(buckets, b)
	}

	groups := make([]Group, 0)
	for _, b := range buckets {
		members := distinct(b.members)
		if len(members) < 2 {
			continue
		}

		sort.SliceStable(members, func(i, j int) bool {
			return members[i].CreatedAt < members[j].CreatedAt
		})

		keep := 0
		for i, m := range members {
			if CompanyID(m) != "" {
				keep = i
				break
			}
		}

		g := Group{
			Key:       displayKey(b.key),
			Title:     members[keep].Text(FieldTitle),
			CompanyID: b.companyID,
			Keep:      members[keep],
		}
		for i, m := range members {
			if i != keep {
				g.Delete = append(g.Delete, m)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// distinct drops repeated ids, keeping the first occurrence.
func distinct(records []reconcile.Record) []reconcile.Record {
	seen := make(map[string]bool, len(records))
	out := make([]reconcile.Record, 0, len(records))
	for _, r := range records {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

func displayKey(key string) string {
	return strings.ReplaceAll(key, "\x00", " | ")
}

// Classify turns duplicate sets into keep and delete items.
func Classify(groups []Group) []reconcile.Item {
	items := make([]reconcile.Item, 0)
	for _, g := range groups {
		items = append(items, reconcile.Item{
			Ref:      g.Keep.ID,
			EntityID: g.Keep.ID,
			Label:    g.Title,
			Action:   reconcile.ActionKeep,
			Key:      g.Key,
			Reason:   "earliest note in duplicate set",
		})
		for _, d := range g.Delete {
			items = append(items, reconcile.Item{
				Ref:      d.ID,
				EntityID: d.ID,
				Label:    d.Text(FieldTitle),
				Action:   reconcile.ActionDelete,
				Key:      g.Key,
				Reason:   "duplicate of " + g.Keep.ID,
			})
		}
	}
	return items
}
