package transfer

import (
	"maps"
	"slices"
	"time"

	"worldsmith/internal/world"
)

type RebindOptions struct {
	WorldID           string
	NameSuffix        string
	Now               time.Time
	RewriteReferences bool
	// NewID mints entity ids when RewriteReferences is set.
	NewID func() string
}

// Rebind returns a deep copy of b owned by opts.WorldID. b is not modified.
//
// Without RewriteReferences every entity keeps its id and every reference is
// copied verbatim, so importing the same bundle twice yields two worlds whose
// entities share ids. With RewriteReferences each entity (and each timeline
// event) gets a fresh id and every reference that points inside the bundle
// follows it; references that leave the bundle are copied unchanged. Ids are
// matched within the referenced collection only. Members the entity types do
// not declare are carried over in Extra.
func Rebind(b *Bundle, opts RebindOptions) *Bundle {
	ids := idMap{}
	if opts.RewriteReferences && opts.NewID != nil {
		ids = mintIDs(b, opts.NewID)
	}

	out := &Bundle{
		Version:    b.Version,
		ExportedAt: b.ExportedAt,
		World:      b.World,
	}
	out.World.ID = opts.WorldID
	out.World.Name = b.World.Name + opts.NameSuffix
	out.World.Tags = slices.Clone(b.World.Tags)
	out.World.Extra = maps.Clone(b.World.Extra)
	out.World.CreatedAt = opts.Now
	out.World.UpdatedAt = opts.Now

	wid := opts.WorldID

	out.Characters = make([]world.Character, 0, len(b.Characters))
	for _, c := range b.Characters {
		c.ID = ids.get(world.Characters, c.ID)
		c.WorldID = wid
		c.Tags = slices.Clone(c.Tags)
		c.Extra = maps.Clone(c.Extra)
		rels := make([]world.Relationship, 0, len(c.Relationships))
		for _, rel := range c.Relationships {
			rel.CharacterID = ids.get(world.Characters, rel.CharacterID)
			rel.Extra = maps.Clone(rel.Extra)
			rels = append(rels, rel)
		}
		if c.Relationships == nil {
			rels = nil
		}
		c.Relationships = rels
		out.Characters = append(out.Characters, c)
	}

	out.Locations = make([]world.Location, 0, len(b.Locations))
	for _, l := range b.Locations {
		l.ID = ids.get(world.Locations, l.ID)
		l.WorldID = wid
		l.ParentID = ids.get(world.Locations, l.ParentID)
		l.Tags = slices.Clone(l.Tags)
		l.Extra = maps.Clone(l.Extra)
		out.Locations = append(out.Locations, l)
	}

	out.Items = make([]world.Item, 0, len(b.Items))
	for _, it := range b.Items {
		it.ID = ids.get(world.Items, it.ID)
		it.WorldID = wid
		it.OwnerID = ids.get(world.Characters, it.OwnerID)
		it.LocationID = ids.get(world.Locations, it.LocationID)
		it.Tags = slices.Clone(it.Tags)
		it.Extra = maps.Clone(it.Extra)
		out.Items = append(out.Items, it)
	}

	out.Factions = make([]world.Faction, 0, len(b.Factions))
	for _, f := range b.Factions {
		f.ID = ids.get(world.Factions, f.ID)
		f.WorldID = wid
		f.LeaderID = ids.get(world.Characters, f.LeaderID)
		f.MemberIDs = ids.all(world.Characters, f.MemberIDs)
		f.AllyIDs = ids.all(world.Factions, f.AllyIDs)
		f.EnemyIDs = ids.all(world.Factions, f.EnemyIDs)
		f.Tags = slices.Clone(f.Tags)
		f.Extra = maps.Clone(f.Extra)
		out.Factions = append(out.Factions, f)
	}

	out.Timelines = make([]world.Timeline, 0, len(b.Timelines))
	for _, tl := range b.Timelines {
		tl.ID = ids.get(world.Timelines, tl.ID)
		tl.WorldID = wid
		tl.Extra = maps.Clone(tl.Extra)
		var events []world.TimelineEvent
		if tl.Events != nil {
			events = make([]world.TimelineEvent, 0, len(tl.Events))
		}
		for _, ev := range tl.Events {
			ev.ID = ids.get(timelineEvents, ev.ID)
			ev.CharacterIDs = ids.all(world.Characters, ev.CharacterIDs)
			ev.LocationIDs = ids.all(world.Locations, ev.LocationIDs)
			ev.Extra = maps.Clone(ev.Extra)
			events = append(events, ev)
		}
		tl.Events = events
		out.Timelines = append(out.Timelines, tl)
	}

	out.LoreNotes = make([]world.LoreNote, 0, len(b.LoreNotes))
	for _, n := range b.LoreNotes {
		n.ID = ids.get(world.LoreNotes, n.ID)
		n.WorldID = wid
		n.Tags = slices.Clone(n.Tags)
		n.Extra = maps.Clone(n.Extra)
		var links []world.EntityLink
		if n.LinkedEntities != nil {
			links = make([]world.EntityLink, 0, len(n.LinkedEntities))
		}
		for _, link := range n.LinkedEntities {
			link.ID = ids.get(world.Collection(link.Type), link.ID)
			link.Extra = maps.Clone(link.Extra)
			links = append(links, link)
		}
		n.LinkedEntities = links
		out.LoreNotes = append(out.LoreNotes, n)
	}

	out.Snapshots = make([]world.Snapshot, 0, len(b.Snapshots))
	for _, sn := range b.Snapshots {
		sn.ID = ids.get(world.Snapshots, sn.ID)
		sn.WorldID = wid
		sn.Data = slices.Clone(sn.Data)
		sn.Extra = maps.Clone(sn.Extra)
		out.Snapshots = append(out.Snapshots, sn)
	}

	if b.MagicSystems != nil {
		out.MagicSystems = make([]world.MagicSystem, 0, len(b.MagicSystems))
	}
	for _, m := range b.MagicSystems {
		m.ID = ids.get(world.MagicSystems, m.ID)
		m.WorldID = wid
		m.Rules = slices.Clone(m.Rules)
		m.Limitations = slices.Clone(m.Limitations)
		m.Extra = maps.Clone(m.Extra)
		out.MagicSystems = append(out.MagicSystems, m)
	}

	if b.Mythologies != nil {
		out.Mythologies = make([]world.Mythology, 0, len(b.Mythologies))
	}
	for _, m := range b.Mythologies {
		m.ID = ids.get(world.Mythologies, m.ID)
		m.WorldID = wid
		m.Deities = slices.Clone(m.Deities)
		m.Extra = maps.Clone(m.Extra)
		out.Mythologies = append(out.Mythologies, m)
	}

	return out
}

// timelineEvents keys event ids in an idMap. Events are not a stored
// collection of their own.
const timelineEvents world.Collection = "timelineEvents"

// idMap maps old entity ids to new ones within each collection, so a
// character and a location sharing an id stay distinct. Ids it does not know
// map to themselves, which keeps references that leave the bundle intact.
type idMap map[world.Collection]map[string]string

func (m idMap) get(c world.Collection, id string) string {
	if mapped, ok := m[c][id]; ok {
		return mapped
	}
	return id
}

func (m idMap) all(c world.Collection, ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = m.get(c, id)
	}
	return out
}

func mintIDs(b *Bundle, newID func() string) idMap {
	ids := idMap{}
	add := func(c world.Collection, id string) {
		if id == "" {
			return
		}
		family, ok := ids[c]
		if !ok {
			family = map[string]string{}
			ids[c] = family
		}
		if _, seen := family[id]; !seen {
			family[id] = newID()
		}
	}
	for _, c := range b.Characters {
		add(world.Characters, c.ID)
	}
	for _, l := range b.Locations {
		add(world.Locations, l.ID)
	}
	for _, it := range b.Items {
		add(world.Items, it.ID)
	}
	for _, f := range b.Factions {
		add(world.Factions, f.ID)
	}
	for _, tl := range b.Timelines {
		add(world.Timelines, tl.ID)
		for _, ev := range tl.Events {
			add(timelineEvents, ev.ID)
		}
	}
	for _, n := range b.LoreNotes {
		add(world.LoreNotes, n.ID)
	}
	for _, sn := range b.Snapshots {
		add(world.Snapshots, sn.ID)
	}
	for _, m := range b.MagicSystems {
		add(world.MagicSystems, m.ID)
	}
	for _, m := range b.Mythologies {
		add(world.Mythologies, m.ID)
	}
	return ids
}
