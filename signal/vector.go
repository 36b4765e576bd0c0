package signal

// Vector holds one value per signal in the schema. Vectors are built per
// document per request and discarded after scoring; the zero value has every
// signal at zero.
type Vector [numSignals]float64

// Get returns the value of a signal.
func (v Vector) Get(id ID) float64 {
	if id >= numSignals {
		return 0
	}
	return v[id]
}

// Set assigns the value of a signal. Out-of-schema IDs are ignored rather
// than panicking, preserving totality at scoring time.
func (v *Vector) Set(id ID, value float64) {
	if id >= numSignals {
		return
	}
	v[id] = value
}

// WeightedSum returns the dot product of the vector with the given weights.
func (v Vector) WeightedSum(w Weights) float64 {
	var sum float64
	for i := range v {
		sum += v[i] * w[i]
	}
	return sum
}

// Map returns the vector as a name-keyed map, retained on results for
// explainability output.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, numSignals)
	for i := range v {
		m[names[i]] = v[i]
	}
	return m
}
