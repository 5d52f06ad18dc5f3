package dose

// Safety is an advisory, never an error: the computation proceeds regardless.
type Safety struct {
	Safe           bool
	Warning        string
	Recommendation string
}

// CheckSafety applies empirical hypofractionation warning rules for the
// given dose per fraction and tissue alpha/beta.
func CheckSafety(dosePerFraction, alphaBeta float64) Safety {
	switch {
	case !isFinite(dosePerFraction) || !isFinite(alphaBeta) || dosePerFraction <= 0 || alphaBeta <= 0:
		return Safety{Safe: false, Warning: "invalid parameters"}
	case alphaBeta < 3 && dosePerFraction > 2:
		return Safety{
			Safe:           false,
			Warning:        "high dose per fraction for a low alpha/beta tissue",
			Recommendation: "consider reducing the dose per fraction",
		}
	case alphaBeta < 8 && dosePerFraction > 3:
		return Safety{
			Safe:           false,
			Warning:        "high dose per fraction",
			Recommendation: "check the regimen against protocol limits",
		}
	case dosePerFraction > 5:
		return Safety{
			Safe:           false,
			Warning:        "very high dose per fraction",
			Recommendation: "requires specific justification",
		}
	default:
		return Safety{Safe: true}
	}
}

// ExplainAlphaBeta gives the banded clinical reading of an alpha/beta value.
func ExplainAlphaBeta(alphaBeta float64) string {
	if !isFinite(alphaBeta) || alphaBeta <= 0 {
		return ""
	}

	switch {
	case alphaBeta < 2:
		return "very low: late-responding tissues and radioresistant tumors (prostate cancer, melanoma)"
	case alphaBeta < 5:
		return "low: most late normal-tissue reactions (spinal cord, liver, kidney)"
	case alphaBeta < 8:
		return "intermediate: early normal-tissue reactions, some tumors"
	case alphaBeta <= 10:
		return "high: most tumors and early reactions (skin, mucosa)"
	default:
		return "very high: fast-growing tumors, acute reactions"
	}
}
