package ports

// Calibrator mapea la probabilidad implícita del consenso a una
// estimación calibrada de probabilidad de ganar. Se carga una vez al
// arrancar, es puro y versionado — los tests inyectan un fake
// determinista.
type Calibrator interface {
	// Predict devuelve la probabilidad calibrada para la implícita dada.
	Predict(impliedProb float64) float64

	// Version identifica el modelo cargado, para logs y trazabilidad.
	Version() string
}
