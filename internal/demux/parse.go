package demux

import "github.com/nanbu-tv/tsgate/internal/psi"

// parseSection decodes a raw section according to its table ID. It returns
// a nil table (and no error) for table IDs this package does not decode, so
// callers can ignore them without treating that as a parse failure.
func parseSection(sec psi.Section) (table any, name string, err error) {
	switch sec.TableID {
	case psi.TableIDPAT:
		pat, err := psi.ParsePAT(sec.Data)
		if err != nil {
			return nil, "PAT", err
		}
		return pat, "PAT", nil

	case psi.TableIDPMT:
		pmt, err := psi.ParsePMT(sec.Data)
		if err != nil {
			return nil, "PMT", err
		}
		return pmt, "PMT", nil

	case psi.TableIDEITPFActual:
		eit, err := psi.ParseEIT(sec.Data)
		if err != nil {
			return nil, "EIT", err
		}
		return eit, "EIT", nil

	default:
		return nil, "", nil
	}
}
