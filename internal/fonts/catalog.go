package fonts

import "runtime"

const rawFontHost = "https://raw.githubusercontent.com/google/fonts/main"

// staticFamily points at the per-weight static font files for one
// family. Variable-weight families ship a single file and have no
// separate bold entry; bold requests for those fall through to the CSS
// discovery API.
type staticFamily struct {
	Regular string
	Bold    string
}

// staticCatalog maps canonical family names to known static file
// locations on the font repository's raw-file host.
var staticCatalog = map[string]staticFamily{
	"montserrat": {
		Regular: rawFontHost + "/ofl/montserrat/static/Montserrat-Regular.ttf",
		Bold:    rawFontHost + "/ofl/montserrat/static/Montserrat-Bold.ttf",
	},
	"poppins": {
		Regular: rawFontHost + "/ofl/poppins/Poppins-Regular.ttf",
		Bold:    rawFontHost + "/ofl/poppins/Poppins-Bold.ttf",
	},
	"lato": {
		Regular: rawFontHost + "/ofl/lato/Lato-Regular.ttf",
		Bold:    rawFontHost + "/ofl/lato/Lato-Bold.ttf",
	},
	"inter": {
		// variable weight, single file
		Regular: rawFontHost + "/ofl/inter/Inter%5Bopsz,wght%5D.ttf",
	},
	"opensans": {
		Regular: rawFontHost + "/ofl/opensans/OpenSans%5Bwdth,wght%5D.ttf",
	},
	"oswald": {
		Regular: rawFontHost + "/ofl/oswald/Oswald%5Bwght%5D.ttf",
	},
	"bebasneue": {
		Regular: rawFontHost + "/ofl/bebasneue/BebasNeue-Regular.ttf",
	},
	"anton": {
		Regular: rawFontHost + "/ofl/anton/Anton-Regular.ttf",
	},
}

// SystemFontPath returns the platform fallback font, always assumed
// present.
func SystemFontPath(bold bool) string {
	switch runtime.GOOS {
	case "darwin":
		if bold {
			return "/System/Library/Fonts/Supplemental/Arial Bold.ttf"
		}
		return "/System/Library/Fonts/Supplemental/Arial.ttf"
	case "windows":
		if bold {
			return `C:\Windows\Fonts\arialbd.ttf`
		}
		return `C:\Windows\Fonts\arial.ttf`
	default:
		if bold {
			return "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
		}
		return "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
	}
}
