package puckdata

type teamEnvelope struct {
	Data teamPayload `json:"data"`
}

type teamPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type playersEnvelope struct {
	Data []playerPayload `json:"data"`
}

type playerPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type gamesEnvelope struct {
	Data []gamePayload `json:"data"`
}

type gamePayload struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

type eventsEnvelope struct {
	Data []eventPayload `json:"data"`
}

// eventPayload keeps the feed's raw spelling. Name resolution and goal
// deduplication happen downstream, never here.
type eventPayload struct {
	Type     string `json:"type"`
	Player   string `json:"player"`
	Assist   string `json:"assist"`
	TeamName string `json:"team_name"`
	TeamSide string `json:"team_side"`
}
