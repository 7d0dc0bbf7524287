package entities

// Snapshot is the full persisted state. Collections keep insertion order.
type Snapshot struct {
	Trucks    []TruckLoad        `json:"trucks"`
	Bales     []Bale             `json:"bales"`
	Pyramids  []Pyramid          `json:"pyramids"`
	Slots     []Slot             `json:"slots"`
	Suppliers []Supplier         `json:"suppliers"`
	Batches   []ConsumptionBatch `json:"batches"`
	Alerts    []Alert            `json:"alerts"`
	Events    []Event            `json:"events"`
	Config    ProcessConfig      `json:"config"`
	Session   Session            `json:"session"`
}

// NewSnapshot returns an empty state with default config and session
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Config:  DefaultProcessConfig(),
		Session: DefaultSession(),
	}
}
