package world

import "fmt"

// Collection names one per-world entity list in the store.
type Collection string

const (
	Characters   Collection = "characters"
	Locations    Collection = "locations"
	Items        Collection = "items"
	Factions     Collection = "factions"
	Timelines    Collection = "timelines"
	LoreNotes    Collection = "loreNotes"
	Snapshots    Collection = "snapshots"
	MagicSystems Collection = "magicSystems"
	Mythologies  Collection = "mythologies"
)

// WorldsKey holds the JSON array of every World.
const WorldsKey = "worlds"

// Collections lists every per-world collection in export order.
var Collections = []Collection{
	Characters,
	Locations,
	Items,
	Factions,
	Timelines,
	LoreNotes,
	Snapshots,
	MagicSystems,
	Mythologies,
}

// Key returns the storage key <collection>_<worldId>.
func (c Collection) Key(worldID string) string {
	return fmt.Sprintf("%s_%s", c, worldID)
}

func ParseCollection(name string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection: %s", name)
}
