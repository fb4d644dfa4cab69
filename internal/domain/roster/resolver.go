package roster

import "strings"

// Entry is a roster member keyed by the abbreviated form the event feed uses.
type Entry struct {
	PlayerID  string
	FullName  string
	Ambiguous bool
}

// Lookup maps abbreviated names to roster identities.
type Lookup map[string]Entry

// Identity is the display outcome of resolving a feed name. PlayerID is nil
// when the name could not be safely attributed to a roster member.
type Identity struct {
	DisplayName string
	PlayerID    *string
}

// Abbreviate converts a full name to the feed's "Initial. Lastname" form.
// Names with fewer than two tokens pass through unchanged.
func Abbreviate(fullName string) string {
	tokens := strings.Fields(fullName)
	if len(tokens) < 2 {
		return fullName
	}
	return string([]rune(tokens[0])[:1]) + ". " + strings.Join(tokens[1:], " ")
}

// BuildLookup indexes a roster by abbreviated name. When two or more players
// share an abbreviation the entry is marked ambiguous and never resolves.
func BuildLookup(players []Player) Lookup {
	lookup := make(Lookup, len(players))
	for _, p := range players {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}

		key := Abbreviate(name)
		if existing, ok := lookup[key]; ok {
			existing.Ambiguous = true
			lookup[key] = existing
			continue
		}
		lookup[key] = Entry{PlayerID: p.ID, FullName: name}
	}
	return lookup
}

// Resolve maps a feed name to a roster identity. Missing rosters, unknown
// names (e.g. mid-season transfers) and ambiguous abbreviations all degrade
// to the raw name with no player link.
func (l Lookup) Resolve(rawName string) Identity {
	if len(l) == 0 {
		return Identity{DisplayName: rawName}
	}

	entry, ok := l[rawName]
	if !ok || entry.Ambiguous {
		return Identity{DisplayName: rawName}
	}

	playerID := entry.PlayerID
	return Identity{DisplayName: entry.FullName, PlayerID: &playerID}
}
