package extract

import "strings"

// Merge folds incoming into existing and returns the combined result.
// Neither argument is modified.
func Merge(existing, incoming *Result) *Result {
	if existing == nil {
		existing = NewResult()
	}
	if incoming == nil {
		incoming = NewResult()
	}
	return &Result{
		Characters:    mergeEntities(existing.Characters, incoming.Characters, nameKey),
		Locations:     mergeEntities(existing.Locations, incoming.Locations, nameKey),
		Items:         mergeEntities(existing.Items, incoming.Items, nameKey),
		Factions:      mergeEntities(existing.Factions, incoming.Factions, nameKey),
		Events:        mergeEntities(existing.Events, incoming.Events, titleKey),
		Themes:        union(existing.Themes, incoming.Themes),
		PlotPoints:    union(existing.PlotPoints, incoming.PlotPoints),
		WorldBuilding: union(existing.WorldBuilding, incoming.WorldBuilding),
	}
}

// mergeEntities overlays each incoming entity onto the existing entity with
// the same natural key, or appends it. Fields present in the incoming entity
// win; fields it lacks keep their old values. Entities without a usable key
// never match anything and are appended as-is for Clean to drop.
func mergeEntities(existing, incoming []Fields, field string) []Fields {
	out := make([]Fields, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing))
	for _, e := range existing {
		if key, ok := naturalKey(e, field); ok {
			if _, seen := index[key]; !seen {
				index[key] = len(out)
			}
		}
		out = append(out, clone(e))
	}

	for _, item := range incoming {
		key, ok := naturalKey(item, field)
		if !ok {
			out = append(out, clone(item))
			continue
		}
		if i, found := index[key]; found {
			for k, v := range item {
				out[i][k] = v
			}
			continue
		}
		index[key] = len(out)
		out = append(out, clone(item))
	}
	return out
}

// union keeps existing order and appends unseen incoming strings. Matching
// is exact: "Fate" and "fate" are different entries.
func union(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, list := range [][]string{existing, incoming} {
		for _, s := range list {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Clean drops entities whose natural key is missing or blank and blank
// entries of the scalar lists. It is the only integrity gate; other fields
// are not validated.
func Clean(r *Result) *Result {
	if r == nil {
		return NewResult()
	}
	return &Result{
		Characters:    keepKeyed(r.Characters, nameKey),
		Locations:     keepKeyed(r.Locations, nameKey),
		Items:         keepKeyed(r.Items, nameKey),
		Factions:      keepKeyed(r.Factions, nameKey),
		Events:        keepKeyed(r.Events, titleKey),
		Themes:        keepNonBlank(r.Themes),
		PlotPoints:    keepNonBlank(r.PlotPoints),
		WorldBuilding: keepNonBlank(r.WorldBuilding),
	}
}

func keepKeyed(items []Fields, field string) []Fields {
	out := make([]Fields, 0, len(items))
	for _, item := range items {
		if _, ok := naturalKey(item, field); ok {
			out = append(out, item)
		}
	}
	return out
}

func keepNonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func clone(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
