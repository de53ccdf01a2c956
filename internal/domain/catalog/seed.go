package catalog

// The SASQART linac protocol catalog. Imported into an organization's
// catalog on demand; organizations may then adjust bands or add their own
// entries.

type seedTest struct {
	TestID      string
	Description string
	Tolerance   string
	ActionLevel string
	Calculator  string
	Unit        string
}

var sasqartLinacCatalog = map[string][]seedTest{
	"daily": {
		{TestID: "DL1", Description: "Door interlock", Tolerance: "Functional", ActionLevel: "Functional"},
		{TestID: "DL2", Description: "Radiation beam status indicators", Tolerance: "Functional", ActionLevel: "Functional"},
		{TestID: "DL3", Description: "Audio-visual monitor", Tolerance: "Functional", ActionLevel: "Functional"},
		{TestID: "DL4", Description: "Gantry/collimator motion interlock", Tolerance: "Functional", ActionLevel: "Functional"},
		{TestID: "DL5", Description: "Couch motion/brakes", Tolerance: "Functional", ActionLevel: "Functional"},
		{TestID: "DL6", Description: "Radiation area monitors", Tolerance: "Functional", ActionLevel: "Functional"},
		{TestID: "DL7", Description: "Beam interrupt devices", Tolerance: "Functional", ActionLevel: "Functional"},
		{TestID: "DL8", Description: "Output constancy – photons", Tolerance: "2.00%", ActionLevel: "3.00%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "DL9", Description: "Output constancy – electrons", Tolerance: "2.00%", ActionLevel: "3.00%", Calculator: CalcPercentDiff, Unit: "%"},
	},
	"monthly": {
		{TestID: "ML1", Description: "Emergency off switches", Tolerance: "Functional", ActionLevel: "Functional"},
		{TestID: "ML2", Description: "Lasers and crosswires", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "ML3", Description: "Optical distance indicator", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "ML4", Description: "Radiation/light field size", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "ML5", Description: "Physical/dynamic wedge factors", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "ML6", Description: "Gantry angle indicators", Tolerance: "0.5°", ActionLevel: "1°", Calculator: CalcPosition, Unit: "°"},
		{TestID: "ML7", Description: "Collimator angle indicators", Tolerance: "0.5°", ActionLevel: "1°", Calculator: CalcPosition, Unit: "°"},
		{TestID: "ML8", Description: "Couch position indicators", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "ML9", Description: "Couch rotation isocentre", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "ML10", Description: "Couch angle indicator", Tolerance: "0.5°", ActionLevel: "1°", Calculator: CalcPosition, Unit: "°"},
		{TestID: "ML11", Description: "Collimator rotation isocentre", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "ML12", Description: "Light/radiation field coincidence", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "ML13", Description: "Beam flatness constancy", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "ML14", Description: "Beam symmetry constancy", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "ML15", Description: "Relative dosimetry constancy", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "ML16", Description: "Accuracy of QA records", Tolerance: "Complete", ActionLevel: "Complete"},
	},
	"quarterly": {
		{TestID: "Q1", Description: "Central axis depth dose reproducibility", Tolerance: "1%/2mm", ActionLevel: "2%/3mm"},
	},
	"annual": {
		{TestID: "AL1", Description: "Accessory mechanical integrity", Tolerance: "Safe", ActionLevel: "Safe"},
		{TestID: "AL2", Description: "Accessory interlocks", Tolerance: "Functional", ActionLevel: "Functional"},
		{TestID: "AL3", Description: "ODI at extended distances", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "AL4", Description: "Light/rad coincidence vs gantry", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "AL5", Description: "Field size vs gantry angle", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "AL6", Description: "TRS-398 calibration", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "AL7", Description: "Output factors", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "AL8", Description: "Wedge transmission and profiles", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "AL9", Description: "Accessory transmission factors", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "AL10", Description: "Output vs gantry angle", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "AL11", Description: "Symmetry vs gantry angle", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcPercentDiff, Unit: "%"},
		{TestID: "AL12", Description: "Monitor unit linearity", Tolerance: "1%", ActionLevel: "2%", Calculator: CalcTimerLin, Unit: "%"},
		{TestID: "AL13", Description: "Monitor unit end effect", Tolerance: "< 1 MU", ActionLevel: "< 2 MU", Unit: "MU"},
		{TestID: "AL14", Description: "Collimator rotation isocentre", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "AL15", Description: "Gantry rotation isocentre", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "AL16", Description: "Couch rotation isocentre", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "AL17", Description: "Coincidence of axes", Tolerance: "1 mm", ActionLevel: "2 mm", Calculator: CalcPosition, Unit: "mm"},
		{TestID: "AL18", Description: "Independent review", Tolerance: "Complete", ActionLevel: "Complete"},
	},
}

// seedOrder keeps the import deterministic.
var seedFrequencies = []string{"daily", "monthly", "quarterly", "annual"}
