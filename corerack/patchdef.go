package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	The persisted patch-definition shape a client exchanges
 *		with the core.
 *
 * Description:	Serialization of patches to JSON is deliberately left
 *		to an external layer - an editor, a server, a file format
 *		- this core only declares the wire shape and the version
 *		gate, since VersionUnsupported is part of the engine's own
 *		error taxonomy, not of serialization itself.
 *
 *------------------------------------------------------------------*/

// CurrentPatchDefVersion is the only version this core can read.
const CurrentPatchDefVersion = 1

// ModuleDef is one node entry in a PatchDef. Position and State are
// opaque to the core - an editor UI's layout hint and a module's
// optional private state blob, respectively.
type ModuleDef struct {
	Name       string
	ModuleType string
	Position   *[2]float64
	State      map[string]any
}

// CableDef is one cable entry in a PatchDef, in "node.port" form.
type CableDef struct {
	From        string
	To          string
	Attenuation *float64
	Offset      *float64
}

// PatchDef is the persisted exchange format clients read and write.
// Loading policy (owned by the external serialization layer, not this
// core):
// unknown module_type fails naming the type; unknown param key is
// skipped with a warning; missing optional fields take their defaults.
type PatchDef struct {
	Version     int
	Name        string
	Author      string
	Description string
	Tags        []string
	Modules     []ModuleDef
	Cables      []CableDef
	Parameters  map[string]float64 // "<node>.<param>" -> value
}

// CheckPatchDefVersion enforces the version gate: every version other
// than CurrentPatchDefVersion, including 0, is rejected.
func CheckPatchDefVersion(version int) error {
	if version != CurrentPatchDefVersion {
		return &ErrVersionUnsupported{Version: version}
	}
	return nil
}
