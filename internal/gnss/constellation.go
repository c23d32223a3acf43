package gnss

import "fmt"

// Constellation identifies the satellite system a PRN belongs to.
type Constellation int

const (
	GPS Constellation = iota
	SBAS
	GLONASS
	Galileo
	BeiDou
	QZSS
)

func (c Constellation) String() string {
	switch c {
	case GPS:
		return "gps"
	case SBAS:
		return "sbas"
	case GLONASS:
		return "glonass"
	case Galileo:
		return "galileo"
	case BeiDou:
		return "beidou"
	case QZSS:
		return "qzss"
	default:
		return fmt.Sprintf("constellation(%d)", int(c))
	}
}

// ConstellationFromPRN classifies a PRN by numeric range. Rules are checked
// in order and the first match wins; anything unmatched falls back to
// GLONASS, so the result is not proof of GLONASS membership.
func ConstellationFromPRN(prn int) Constellation {
	switch {
	case prn < 33:
		return GPS
	case prn < 65 || (prn >= 152 && prn <= 158):
		return SBAS
	case prn >= 301 && prn <= 336:
		return Galileo
	case prn >= 401 && prn <= 437:
		return BeiDou
	case prn >= 193 && prn <= 202:
		return QZSS
	default:
		return GLONASS
	}
}
