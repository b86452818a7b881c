package registry

// Default returns the production roster: the south-west German base cities,
// the Alpine destinations with free-air temperature reporting, and the
// flight-only spring-camp destinations.
func Default() *Registry {
	return New([]City{
		{Name: "Freiburg", Lat: 47.9990, Lon: 7.8421},
		{Name: "Karlsruhe", Lat: 49.0069, Lon: 8.4037},
		{Name: "Stuttgart", Lat: 48.7758, Lon: 9.1829},
		{Name: "Basel", Lat: 47.5596, Lon: 7.5886},
		{Name: "Strasbourg", Lat: 48.5734, Lon: 7.7521, Token: "strasbourg"},
		{Name: "Konstanz", Lat: 47.6593, Lon: 9.1753},
		{Name: "Zürich", Lat: 47.3769, Lon: 8.5417, Token: "zuerich"},
		{Name: "Luzern", Lat: 47.0502, Lon: 8.3093, Mountain: true},
		{Name: "Innsbruck", Lat: 47.2692, Lon: 11.4041, Mountain: true},
		{Name: "Bozen", Lat: 46.4983, Lon: 11.3548, Mountain: true},
		{Name: "Freudenstadt", Lat: 48.4666, Lon: 8.4113, Mountain: true},
		{Name: "Mallorca", Lat: 39.5696, Lon: 2.6502, FlightOnly: true},
		{Name: "Girona", Lat: 41.9794, Lon: 2.8214, FlightOnly: true},
	})
}
