package op

// kindByName classifies the operation vocabulary the construction layer is
// allowed to request. Transformations not listed here are unknown, not
// implicitly generic: an unknown name reaching the translator would emit a
// call the native engine cannot resolve.
var kindByName = map[string]Kind{
	// Transformations.
	"Filter":   KindGeneric,
	"Define":   KindGeneric,
	"Redefine": KindGeneric,
	"Alias":    KindGeneric,
	"Range":    KindGeneric,
	"Vary":     KindGeneric,

	// Terminal actions.
	"Count":     KindAction,
	"Sum":       KindAction,
	"Mean":      KindAction,
	"Min":       KindAction,
	"Max":       KindAction,
	"StdDev":    KindAction,
	"Stats":     KindAction,
	"Histo1D":   KindAction,
	"Histo2D":   KindAction,
	"Histo3D":   KindAction,
	"Profile1D": KindAction,
	"Profile2D": KindAction,
	"Graph":     KindAction,

	// Terminal action that writes an output file.
	"Snapshot": KindSnapshot,

	// Actions only expressible outside the native engine.
	"AsNumpy": KindNonNative,
}

// KindOf returns the kind registered for an operation name. The second
// return is false for names outside the known vocabulary.
func KindOf(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}
