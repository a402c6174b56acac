package util

// Flatten collapses a nested JSON-decoded record into a single-level map with
// dot-joined keys. List elements share their parent's key prefix. Contact
// flows can only consume flat attribute maps, so every record returned to a
// flow passes through here.
func Flatten(nested map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	flattenInto(out, nested, "")
	return out
}

func flattenInto(out map[string]interface{}, value interface{}, prefix string) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			flattenInto(out, child, prefix+key+".")
		}
	case []interface{}:
		for _, child := range v {
			flattenInto(out, child, prefix)
		}
	default:
		if prefix != "" {
			out[prefix[:len(prefix)-1]] = v
		}
	}
}
