package whisper

// inferenceParams are the engine knobs callers may pass through the
// loosely typed parameters map.
type inferenceParams struct {
	Temperature  float64
	BeamSize     int
	BestOf       int
	Translate    bool
	NoTimestamps bool
	Prompt       string
}

// extractParams pulls typed values out of a decoded JSON object. JSON
// numbers arrive as float64, so integer knobs coerce.
func extractParams(p map[string]any) inferenceParams {
	return inferenceParams{
		Temperature:  floatParam(p, "temperature", 0.0),
		BeamSize:     intParam(p, "beam_size", -1),
		BestOf:       intParam(p, "best_of", 2),
		Translate:    boolParam(p, "translate", false),
		NoTimestamps: boolParam(p, "no_timestamps", false),
		Prompt:       stringParam(p, "prompt", ""),
	}
}

func floatParam(m map[string]any, key string, def float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func intParam(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func boolParam(m map[string]any, key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

func stringParam(m map[string]any, key string, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}
