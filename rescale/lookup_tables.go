package rescale

import (
	"fmt"
)

// LookupTable is either a small control-point table (InterpIn/InterpOut
// pairs interpolated piecewise-linearly) or a dense index table (Dense,
// integer-indexed after scaling the input onto its length).
type LookupTable struct {
	InterpIn  []float64
	InterpOut []float64
	Dense     []float64
}

func (t *LookupTable) IsDense() bool {
	return len(t.Dense) > 0
}

// Corrected-reflectance enhancement control points:
//	0 -> 0, 25 -> 90, 55 -> 140, 100 -> 175, 255 -> 255
var creflTable = &LookupTable{
	InterpIn:  []float64{0, 25, 55, 100, 255},
	InterpOut: []float64{0, 90, 140, 175, 255},
}

// The original dense form of the corrected-reflectance enhancement,
// kept for configurations that predate the control-point table.
var creflOldTable = &LookupTable{
	Dense: []float64{
		0, 3, 7, 10, 14, 18, 21, 25, 28, 32, 36, 39, 43,
		46, 50, 54, 57, 61, 64, 68, 72, 75, 79, 82, 86, 90,
		91, 93, 95, 96, 98, 100, 101, 103, 105, 106, 108, 110, 111,
		113, 115, 116, 118, 120, 121, 123, 125, 126, 128, 130, 131, 133,
		135, 136, 138, 140, 140, 141, 142, 143, 143, 144, 145, 146, 147,
		147, 148, 149, 150, 150, 151, 152, 153, 154, 154, 155, 156, 157,
		157, 158, 159, 160, 161, 161, 162, 163, 164, 164, 165, 166, 167,
		168, 168, 169, 170, 171, 171, 172, 173, 174, 175, 175, 176, 176,
		177, 177, 178, 178, 179, 179, 180, 180, 181, 181, 182, 182, 183,
		183, 184, 184, 185, 185, 186, 186, 187, 187, 188, 188, 189, 189,
		190, 191, 191, 192, 192, 193, 193, 194, 194, 195, 195, 196, 196,
		197, 197, 198, 198, 199, 199, 200, 200, 201, 201, 202, 202, 203,
		203, 204, 204, 205, 205, 206, 207, 207, 208, 208, 209, 209, 210,
		210, 211, 211, 212, 212, 213, 213, 214, 214, 215, 215, 216, 216,
		217, 217, 218, 218, 219, 219, 220, 220, 221, 221, 222, 223, 223,
		224, 224, 225, 225, 226, 226, 227, 227, 228, 228, 229, 229, 230,
		230, 231, 231, 232, 232, 233, 233, 234, 234, 235, 235, 236, 236,
		237, 237, 238, 239, 239, 240, 240, 241, 241, 242, 242, 243, 243,
		244, 244, 245, 245, 246, 246, 247, 247, 248, 248, 249, 249, 250,
		250, 251, 251, 252, 252, 253, 253, 254, 255,
	},
}

var lookupTables = map[string]*LookupTable{
	"crefl":     creflTable,
	"crefl_old": creflOldTable,
}

// RegisterLookupTable makes a table selectable by name from rescale
// configuration. Must be called during program initialization, like
// RegisterMethod.
func RegisterLookupTable(name string, table *LookupTable) error {
	if _, found := lookupTables[name]; found {
		return fmt.Errorf("lookup table '%s' is already registered", name)
	}
	if table.IsDense() == (len(table.InterpIn) > 0) {
		return fmt.Errorf("lookup table '%s' must be either dense or control-point, not both", name)
	}
	if !table.IsDense() && len(table.InterpIn) != len(table.InterpOut) {
		return fmt.Errorf("lookup table '%s' has mismatched control point lengths", name)
	}
	lookupTables[name] = table
	return nil
}

func lookupTableByName(name string) (*LookupTable, error) {
	table, found := lookupTables[name]
	if !found {
		return nil, fmt.Errorf("unknown lookup table '%s'", name)
	}
	return table, nil
}
