package features

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	// AnyDegree in the required degrees accepts every candidate degree.
	AnyDegree     = "ANY"
	UnknownDegree = "UNKNOWN"
	GeneralDomain = "General"
)

type degreeKeyword struct {
	keyword string
	degree  string
}

// checked in order; the first hit is the candidate's degree
var degreeKeywords = []degreeKeyword{
	{keyword: "bachelor", degree: "BTECH"},
	{keyword: "bsc", degree: "BSC"},
	{keyword: "b.e", degree: "BTECH"},
	{keyword: "btech", degree: "BTECH"},
	{keyword: "master", degree: "MTECH"},
	{keyword: "msc", degree: "MSC"},
	{keyword: "mtech", degree: "MTECH"},
	{keyword: "phd", degree: "PHD"},
	{keyword: "doctor", degree: "PHD"},
	{keyword: "doctorate", degree: "PHD"},
}

// plural and possessive forms of a degree keyword
var degreeSuffixes = []string{"s", "'s", "’s"}

var baseSkills = []string{
	"python", "java", "c++", "machine learning", "deep learning",
	"nlp", "sql", "data analysis", "flask", "django",
	"pandas", "numpy", "tensorflow", "pytorch", "excel",
	"marketing", "seo", "content creation", "social media",
	"accounting", "financial analysis", "auditing",
}

type domain struct {
	name     string
	keywords []string
	skills   []string
}

var domains = []domain{
	{
		name:     "IT",
		keywords: []string{"software", "developer", "programmer", "engineer", "python", "java", "database"},
		skills:   []string{"python", "java", "c++", "sql", "flask", "django", "tensorflow", "pytorch", "machine learning", "deep learning", "nlp"},
	},
	{
		name:     "Marketing",
		keywords: []string{"marketing", "seo", "brand", "campaign", "advertising"},
		skills:   []string{"seo", "content creation", "social media", "branding", "campaign"},
	},
	{
		name:     "Finance",
		keywords: []string{"finance", "accounting", "audit", "budget", "tax"},
		skills:   []string{"accounting", "financial analysis", "auditing", "budgeting", "forecasting"},
	},
}

var experienceRe = regexp.MustCompile(`(\d+)\s+(?:years|yrs|year)`)

// Requirements are the structured demands of a job description.
type Requirements struct {
	Domain  string
	Degrees []string
	Skills  []string
}

// Candidate holds the structured attributes parsed from a CV.
type Candidate struct {
	Name       string
	Domain     string
	Degree     string
	Skills     []string
	Experience int
}

// ExtractRequirements parses the required degrees and skills of a job description.
// When no degree is mentioned the requirement is AnyDegree.
func ExtractRequirements(jd string) Requirements {
	lower := strings.ToLower(jd)
	d := DetectDomain(jd)

	var degrees []string
	for _, dk := range degreeKeywords {
		if containsTerm(lower, dk.keyword, degreeSuffixes...) && !slices.Contains(degrees, dk.degree) {
			degrees = append(degrees, dk.degree)
		}
	}
	if len(degrees) == 0 {
		degrees = []string{AnyDegree}
	}
	slices.Sort(degrees)

	return Requirements{
		Domain:  d,
		Degrees: degrees,
		Skills:  ExtractSkills(jd, d),
	}
}

// ParseCandidate extracts the degree, skills and experience of a CV.
func ParseCandidate(name, text string) Candidate {
	d := DetectDomain(text)
	return Candidate{
		Name:       name,
		Domain:     d,
		Degree:     ExtractDegree(text),
		Skills:     ExtractSkills(text, d),
		Experience: ExtractExperience(text),
	}
}

// DetectDomain returns the domain with the most keyword hits, or GeneralDomain.
func DetectDomain(text string) string {
	lower := strings.ToLower(text)

	best, bestHits := GeneralDomain, 0
	for _, d := range domains {
		hits := 0
		for _, kw := range d.keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = d.name, hits
		}
	}
	return best
}

// ExtractDegree returns the first degree named in text, or UnknownDegree.
func ExtractDegree(text string) string {
	lower := strings.ToLower(text)
	for _, dk := range degreeKeywords {
		if containsTerm(lower, dk.keyword, degreeSuffixes...) {
			return dk.degree
		}
	}
	return UnknownDegree
}

// ExtractSkills returns the sorted known skills present in text. Skills of
// the given domain are considered in addition to the base list.
func ExtractSkills(text, domainName string) []string {
	lower := strings.ToLower(text)

	candidates := slices.Clone(baseSkills)
	for _, d := range domains {
		if d.name == domainName {
			candidates = append(candidates, d.skills...)
		}
	}

	found := make([]string, 0)
	for _, skill := range candidates {
		if containsTerm(lower, skill) && !slices.Contains(found, skill) {
			found = append(found, skill)
		}
	}
	slices.Sort(found)
	return found
}

// ExtractExperience returns the largest "N years" figure in text.
func ExtractExperience(text string) int {
	best := 0
	for _, m := range experienceRe.FindAllStringSubmatch(strings.ToLower(text), -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best {
			best = n
		}
	}
	return best
}

// DegreeMatch reports whether the candidate's degree satisfies the requirements.
func DegreeMatch(c Candidate, r Requirements) bool {
	return slices.Contains(r.Degrees, AnyDegree) || slices.Contains(r.Degrees, c.Degree)
}

// SkillMatch is |candidate ∩ required| / |required|, or 0 when nothing is required.
func SkillMatch(c Candidate, r Requirements) float64 {
	if len(r.Skills) == 0 {
		return 0
	}

	matched := 0
	for _, s := range r.Skills {
		if slices.Contains(c.Skills, s) {
			matched++
		}
	}
	return float64(matched) / float64(len(r.Skills))
}
