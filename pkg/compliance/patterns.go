package compliance

import "regexp"

// Severity and confidence grades for findings.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"

	ConfidenceLow    = "LOW"
	ConfidenceMedium = "MEDIUM"
	ConfidenceHigh   = "HIGH"
)

// Pattern describes one category of personal data and how to find it.
type Pattern struct {
	Name           string
	Regexp         *regexp.Regexp
	Severity       string
	Confidence     string
	Regulation     string
	Recommendation string
}

// PIIPatterns covers personal data under GDPR/CCPA/PCI-DSS.
var PIIPatterns = []Pattern{
	{
		Name:           "email",
		Regexp:         regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Severity:       SeverityMedium,
		Confidence:     ConfidenceHigh,
		Regulation:     "GDPR",
		Recommendation: "Remove or tokenize email addresses before committing",
	},
	{
		Name:           "ssn",
		Regexp:         regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		Severity:       SeverityHigh,
		Confidence:     ConfidenceHigh,
		Regulation:     "GDPR",
		Recommendation: "Never store social security numbers in source code",
	},
	{
		Name:           "phone",
		Regexp:         regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s][0-9]{3}[-.\s]?[0-9]{4}\b`),
		Severity:       SeverityMedium,
		Confidence:     ConfidenceMedium,
		Regulation:     "GDPR",
		Recommendation: "Mask phone numbers or move them to secured storage",
	},
	{
		Name:           "credit_card",
		Regexp:         regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`),
		Severity:       SeverityCritical,
		Confidence:     ConfidenceHigh,
		Regulation:     "PCI-DSS",
		Recommendation: "Card numbers must never appear in source; rotate the exposed card",
	},
	{
		Name:           "ip_address",
		Regexp:         regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		Severity:       SeverityLow,
		Confidence:     ConfidenceMedium,
		Regulation:     "GDPR",
		Recommendation: "Replace real client addresses with documentation ranges",
	},
	{
		Name:           "date_of_birth",
		Regexp:         regexp.MustCompile(`\b(?:0[1-9]|1[0-2])/(?:0[1-9]|[12]\d|3[01])/(?:19|20)\d{2}\b`),
		Severity:       SeverityHigh,
		Confidence:     ConfidenceMedium,
		Regulation:     "GDPR",
		Recommendation: "Remove dates of birth or replace with synthetic data",
	},
	{
		Name:           "street_address",
		Regexp:         regexp.MustCompile(`\b\d+\s+(?:[A-Z][a-z]*\s*)+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr)\b`),
		Severity:       SeverityMedium,
		Confidence:     ConfidenceLow,
		Regulation:     "GDPR",
		Recommendation: "Replace postal addresses with fictional test data",
	},
}

// PHIPatterns covers protected health information under HIPAA.
var PHIPatterns = []Pattern{
	{
		Name:           "medical_record",
		Regexp:         regexp.MustCompile(`(?i)mrn[\s:]+\d+`),
		Severity:       SeverityCritical,
		Confidence:     ConfidenceHigh,
		Regulation:     "HIPAA",
		Recommendation: "Medical record numbers must never appear in source code",
	},
	{
		Name:           "diagnosis_code",
		Regexp:         regexp.MustCompile(`(?i)icd[\s-]?(?:9|10)[\s:]+[A-Z0-9.]+`),
		Severity:       SeverityHigh,
		Confidence:     ConfidenceHigh,
		Regulation:     "HIPAA",
		Recommendation: "Remove diagnosis codes or replace with synthetic examples",
	},
	{
		Name:           "patient_id",
		Regexp:         regexp.MustCompile(`(?i)patient[\s_]id[\s:]+\d+`),
		Severity:       SeverityCritical,
		Confidence:     ConfidenceHigh,
		Regulation:     "HIPAA",
		Recommendation: "Patient identifiers must never appear in source code",
	},
}

// AllPatterns returns the combined PII and PHI tables.
func AllPatterns() []Pattern {
	combined := make([]Pattern, 0, len(PIIPatterns)+len(PHIPatterns))
	combined = append(combined, PIIPatterns...)
	combined = append(combined, PHIPatterns...)
	return combined
}
