package psi

import "time"

// JST is the fixed Japan Standard Time zone (UTC+9, no DST) that all
// ARIB EIT start times are broadcast in.
var JST = time.FixedZone("JST", 9*60*60)

// decodeMJD converts a 16-bit Modified Julian Date into a year/month/day
// triple, using the algorithm from ETSI EN 300 468 Annex C (shared by the
// ARIB STD-B10 EIT, which uses the same MJD+BCD start_time encoding).
func decodeMJD(mjd int) (year, month, day int) {
	yy := int((float64(mjd) - 15078.2) / 365.25)
	mm := int((float64(mjd) - 14956.1 - float64(int(float64(yy)*365.25))) / 30.6001)
	d := mjd - 14956 - int(float64(yy)*365.25) - int(float64(mm)*30.6001)

	k := 0
	if mm == 14 || mm == 15 {
		k = 1
	}

	year = yy + k + 1900
	month = mm - 1 - k*12
	day = d
	return
}

func bcdToDec(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// decodeStartTime decodes the 5-byte MJD+BCD start_time field into a JST
// time.Time. An undefined start_time (mjd 0x0000, or the all-0xFF field
// ETSI EN 300 468 uses for "undefined") decodes to the zero Time.
func decodeStartTime(b []byte) time.Time {
	mjd := int(b[0])<<8 | int(b[1])
	if mjd == 0 || mjd == 0xFFFF {
		return time.Time{}
	}
	year, month, day := decodeMJD(mjd)
	hour := bcdToDec(b[2])
	minute := bcdToDec(b[3])
	second := bcdToDec(b[4])
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, JST)
}

// decodeDuration decodes the 3-byte BCD hms duration field.
func decodeDuration(b []byte) time.Duration {
	h := bcdToDec(b[0])
	m := bcdToDec(b[1])
	s := bcdToDec(b[2])
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}
