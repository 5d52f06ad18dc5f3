package registry

import "radassist/internal/domain/reference"

// seedReferences are literature-sourced alpha/beta defaults installed on
// first run into an empty registry.
var seedReferences = []Input{
	{
		Tissue:      "Lung (late effects)",
		AlphaBeta:   3.0,
		Description: "Typical value for late effects in lung tissue",
		Citations: []reference.Citation{
			{Title: "ESTRO/EORTC recommendations", Year: 1995, URL: "https://www.estro.org"},
			{Title: "Fowler JF. The linear-quadratic formula", Year: 1989, URL: "https://pubmed.ncbi.nlm.nih.gov/2689390/"},
		},
	},
	{
		Tissue:      "Spinal cord",
		AlphaBeta:   2.0,
		Description: "Conservative value for the spinal cord",
		Citations: []reference.Citation{
			{Title: "Schultheiss TE et al. Radiation response", Year: 1995, URL: "https://pubmed.ncbi.nlm.nih.gov/7741617/"},
		},
	},
	{
		Tissue:      "Liver",
		AlphaBeta:   2.0,
		Description: "For late radiation-induced liver disease",
		Citations: []reference.Citation{
			{Title: "Dawson LA et al. Analysis of radiation-induced liver disease", Year: 2002, URL: "https://pubmed.ncbi.nlm.nih.gov/12377322/"},
		},
	},
	{
		Tissue:      "Skin (early reactions)",
		AlphaBeta:   10.0,
		Description: "For erythema and early skin reactions",
		Citations: []reference.Citation{
			{Title: "Turesson I, Thames HD. Repair capacity of human skin", Year: 1989, URL: "https://pubmed.ncbi.nlm.nih.gov/2655381/"},
		},
	},
	{
		Tissue:      "Rectum",
		AlphaBeta:   3.0,
		Description: "For late proctitis",
		Citations: []reference.Citation{
			{Title: "Michalski JM et al. Radiation dose-volume effects", Year: 2010, URL: "https://pubmed.ncbi.nlm.nih.gov/19931641/"},
		},
	},
	{
		Tissue:      "Bladder",
		AlphaBeta:   5.0,
		Description: "For late cystitis",
		Citations: []reference.Citation{
			{Title: "Viswanathan AN et al. Radiation dose-volume effects", Year: 2010, URL: "https://pubmed.ncbi.nlm.nih.gov/19931637/"},
		},
	},
	{
		Tissue:      "Squamous cell carcinoma (SCC)",
		AlphaBeta:   10.0,
		Description: "For most squamous cell carcinomas",
		Citations: []reference.Citation{
			{Title: "Bentzen SM, Ritter MA. The alpha/beta ratio for prostate cancer", Year: 2005, URL: "https://pubmed.ncbi.nlm.nih.gov/15936557/"},
		},
	},
	{
		Tissue:      "Prostate adenocarcinoma",
		AlphaBeta:   1.5,
		Description: "Low value, typical for prostate cancer",
		Citations: []reference.Citation{
			{Title: "Fowler J et al. What hypofractionated protocols", Year: 2003, URL: "https://pubmed.ncbi.nlm.nih.gov/12788163/"},
			{Title: "Brenner DJ, Hall EJ. Fractionation for prostate", Year: 1999, URL: "https://pubmed.ncbi.nlm.nih.gov/10561366/"},
		},
	},
	{
		Tissue:      "Breast cancer",
		AlphaBeta:   4.0,
		Description: "Average value for breast cancer",
		Citations: []reference.Citation{
			{Title: "START Trialists Group. UK Standardisation of Breast Radiotherapy", Year: 2008, URL: "https://pubmed.ncbi.nlm.nih.gov/18242665/"},
		},
	},
	{
		Tissue:      "Melanoma",
		AlphaBeta:   0.6,
		Description: "Very low value indicating high radioresistance",
		Citations: []reference.Citation{
			{Title: "Bentzen SM et al. Radiobiological considerations", Year: 1994, URL: "https://pubmed.ncbi.nlm.nih.gov/7496534/"},
		},
	},
	{
		Tissue:      "Oral mucosa",
		AlphaBeta:   10.0,
		Description: "For oral mucositis",
		Citations: []reference.Citation{
			{Title: "Dörr W, Hamilton CS et al. Normal tissue tolerance", Year: 2010, URL: "https://pubmed.ncbi.nlm.nih.gov/20082811/"},
		},
	},
	{
		Tissue:      "Kidney",
		AlphaBeta:   2.5,
		Description: "For late renal effects",
		Citations: []reference.Citation{
			{Title: "Dawson LA, Kavanagh BD. Radiation-associated kidney injury", Year: 2010, URL: "https://pubmed.ncbi.nlm.nih.gov/20430181/"},
		},
	},
}
