package rooms

// MaxOccupancyReading is the highest head count the people sensor reports.
const MaxOccupancyReading = 30

// Sensors reads simulated room sensors.
type Sensors struct {
	catalog *Catalog
	rnd     Rand
}

func NewSensors(c *Catalog, r Rand) *Sensors {
	if r == nil {
		r = DefaultRand()
	}
	return &Sensors{catalog: c, rnd: r}
}

// HumanCount returns the number of people detected in a room, between 0
// and MaxOccupancyReading.
func (s *Sensors) HumanCount(roomID string) (int, error) {
	if _, err := s.catalog.Get(roomID); err != nil {
		return 0, err
	}
	return s.rnd.IntN(MaxOccupancyReading + 1), nil
}
