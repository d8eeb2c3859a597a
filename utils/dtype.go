package utils

import (
	"fmt"
)

// DtypeRange maps an output raster type to the range of values it can
// represent. Raster type names follow the GDAL convention ("Byte",
// "UInt16", ...). Only integer types are valid rescaling targets since
// the point of rescaling is to fit physical values into a fixed-width
// display range.
func DtypeRange(rasterType string) (float64, float64, error) {
	switch rasterType {
	case "Byte":
		return 0, 255, nil
	case "Int16":
		return -32768, 32767, nil
	case "UInt16":
		return 0, 65535, nil
	case "Int32":
		return -2147483648, 2147483647, nil
	case "UInt32":
		return 0, 4294967295, nil
	default:
		return 0, 0, fmt.Errorf("raster type '%s' is not a valid rescaling output type", rasterType)
	}
}
