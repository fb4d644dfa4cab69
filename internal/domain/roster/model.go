package roster

// Player is one roster member as reported by the upstream provider.
type Player struct {
	ID   string
	Name string
}
