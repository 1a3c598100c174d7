package reconstruct

// WithStrategies lets tests install a custom strategy ladder.
var WithStrategies = withStrategies
