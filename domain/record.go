package domain

// PersistedRecord is the durable mirror of a participant's last-known
// state, keyed by username. Its lifecycle is independent from any session:
// it is read at announce time, overwritten by the write-behind path, and
// never deleted by the presence core.
type PersistedRecord struct {
	Position Position
	Message  string
}
