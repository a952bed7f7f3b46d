package mockapi

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/internal/domain/service"
)

// finding is a catalog entry the simulated scanner may report.
type finding struct {
	title          string
	description    string
	severity       models.Severity
	category       string
	cveID          string
	affectedSystem string
	remediation    string
	cvss           float64
	exploitable    bool
	// orgKeywords restricts the finding to organizations whose name contains
	// one of the keywords. Empty means the finding is a common one.
	orgKeywords []string
}

var catalog = []finding{
	{
		title:          "Weak Password Policy",
		description:    "Organization uses weak password requirements (minimum 6 characters, no complexity requirements)",
		severity:       models.SeverityHigh,
		category:       "Authentication",
		cveID:          "CVE-2023-0001",
		affectedSystem: "User Management System",
		remediation:    "Implement strong password policy with minimum 12 characters, complexity requirements, and regular rotation",
		cvss:           7.5,
		exploitable:    true,
	},
	{
		title:          "Missing Multi-Factor Authentication",
		description:    "Critical systems lack multi-factor authentication, increasing risk of unauthorized access",
		severity:       models.SeverityCritical,
		category:       "Authentication",
		cveID:          "CVE-2023-0002",
		affectedSystem: "Authentication System",
		remediation:    "Enable MFA for all user accounts, especially administrative and privileged accounts",
		cvss:           9.2,
		exploitable:    true,
	},
	{
		title:          "Outdated Software Components",
		description:    "Multiple software components are running outdated versions with known security vulnerabilities",
		severity:       models.SeverityHigh,
		category:       "Software",
		cveID:          "CVE-2023-0003",
		affectedSystem: "Web Application",
		remediation:    "Update all software components to latest stable versions and implement automated patch management",
		cvss:           8.1,
		exploitable:    true,
	},
	{
		title:          "Unencrypted Data Transmission",
		description:    "Sensitive data is transmitted over unencrypted channels (HTTP instead of HTTPS)",
		severity:       models.SeverityMedium,
		category:       "Network",
		cveID:          "CVE-2023-0004",
		affectedSystem: "Web Server",
		remediation:    "Implement SSL/TLS encryption for all data transmission and enforce HTTPS",
		cvss:           6.3,
	},
	{
		title:          "Insufficient Access Controls",
		description:    "User permissions are overly permissive, allowing access to resources beyond job requirements",
		severity:       models.SeverityMedium,
		category:       "Authorization",
		cveID:          "CVE-2023-0005",
		affectedSystem: "Access Control System",
		remediation:    "Implement principle of least privilege and regular access reviews",
		cvss:           5.8,
	},
	{
		title:          "Insecure API Endpoints",
		description:    "API endpoints lack proper authentication and rate limiting",
		severity:       models.SeverityHigh,
		category:       "API Security",
		cveID:          "CVE-2023-0006",
		affectedSystem: "API Gateway",
		remediation:    "Implement API authentication, rate limiting, and input validation",
		cvss:           7.8,
		exploitable:    true,
		orgKeywords:    []string{"tech", "software"},
	},
	{
		title:          "PCI DSS Compliance Issues",
		description:    "Payment card data handling does not meet PCI DSS requirements",
		severity:       models.SeverityCritical,
		category:       "Compliance",
		cveID:          "CVE-2023-0007",
		affectedSystem: "Payment System",
		remediation:    "Implement PCI DSS compliant data handling and encryption",
		cvss:           9.5,
		exploitable:    true,
		orgKeywords:    []string{"bank", "financial"},
	},
	{
		title:          "HIPAA Compliance Violations",
		description:    "Protected health information (PHI) is not properly secured according to HIPAA requirements",
		severity:       models.SeverityCritical,
		category:       "Compliance",
		cveID:          "CVE-2023-0008",
		affectedSystem: "Health Records System",
		remediation:    "Implement HIPAA compliant data protection and access controls",
		cvss:           9.8,
		exploitable:    true,
		orgKeywords:    []string{"health", "medical"},
	},
}

// ================================================================================
// Pickers
// ================================================================================

// Picker decides whether a common finding is reported for a target.
type Picker interface {
	Include(organization, domain, title string) bool
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(organization, domain, title string) bool

func (f PickerFunc) Include(organization, domain, title string) bool {
	return f(organization, domain, title)
}

// RandomPicker reports each common finding with probability one half.
func RandomPicker() Picker {
	return PickerFunc(func(string, string, string) bool { return rand.IntN(2) == 0 })
}

// HashPicker derives inclusion from the target, so repeated scans of the same
// organization and domain report the same findings.
func HashPicker() Picker {
	return PickerFunc(func(organization, domain, title string) bool {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.ToLower(organization) + "|" + strings.ToLower(domain) + "|" + title))
		return h.Sum32()&1 == 0
	})
}

// ================================================================================
// Scanner
// ================================================================================

// Assessment is the outcome of one simulated scan.
type Assessment struct {
	Vulnerabilities []models.Vulnerability
	Recommendations []models.Recommendation
	RiskScore       int
	RiskLevel       models.RiskLevel
}

// Scanner produces simulated findings and scores them.
type Scanner struct {
	picker Picker
}

// NewScanner returns a scanner using picker for the common findings.
func NewScanner(picker Picker) *Scanner {
	if picker == nil {
		picker = RandomPicker()
	}
	return &Scanner{picker: picker}
}

// Assess runs the simulated scan for a target.
func (s *Scanner) Assess(organization, domain string) Assessment {
	org := strings.ToLower(organization)
	var vulns []models.Vulnerability
	for _, f := range catalog {
		if len(f.orgKeywords) == 0 {
			if !s.picker.Include(organization, domain, f.title) {
				continue
			}
		} else if !containsAny(org, f.orgKeywords) {
			continue
		}
		vulns = append(vulns, f.vulnerability())
	}
	if vulns == nil {
		vulns = []models.Vulnerability{}
	}

	score := RiskScore(vulns)
	return Assessment{
		Vulnerabilities: vulns,
		Recommendations: Recommendations(vulns, score),
		RiskScore:       score,
		RiskLevel:       service.LevelForScore(score),
	}
}

func (f finding) vulnerability() models.Vulnerability {
	return models.Vulnerability{
		ID:             models.ID(uuid.NewString()),
		Title:          f.title,
		Description:    f.description,
		Severity:       f.severity,
		Category:       f.category,
		CVEID:          f.cveID,
		AffectedSystem: f.affectedSystem,
		Remediation:    f.remediation,
		CVSSScore:      f.cvss,
		Exploitable:    f.exploitable,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ================================================================================
// Scoring
// ================================================================================

var severityWeight = map[models.Severity]float64{
	models.SeverityCritical: 4,
	models.SeverityHigh:     3,
	models.SeverityMedium:   2,
	models.SeverityLow:      1,
}

// exploitableFactor scales the weight of exploitable findings.
const exploitableFactor = 1.5

// RiskScore is the severity-weighted mean CVSS score scaled to 0-100.
func RiskScore(vulns []models.Vulnerability) int {
	var total, weights float64
	for _, v := range vulns {
		w := severityWeight[v.Severity]
		if v.Exploitable {
			w *= exploitableFactor
		}
		total += v.CVSSScore * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	score := int(math.Floor(total/weights*10 + 0.5))
	return max(0, min(100, score))
}

var priorityRank = map[models.Priority]int{
	models.PriorityCritical: 4,
	models.PriorityHigh:     3,
	models.PriorityMedium:   2,
	models.PriorityLow:      1,
}

var (
	costBySeverity = map[models.Severity]string{
		models.SeverityCritical: "$25,000 - $75,000",
		models.SeverityHigh:     "$10,000 - $30,000",
		models.SeverityMedium:   "$5,000 - $15,000",
		models.SeverityLow:      "$1,000 - $5,000",
	}
	timeBySeverity = map[models.Severity]string{
		models.SeverityCritical: "2-4 weeks",
		models.SeverityHigh:     "1-3 weeks",
		models.SeverityMedium:   "1-2 weeks",
		models.SeverityLow:      "3-7 days",
	}
	stepsByCategory = map[string][]string{
		"authentication": {
			"Review current authentication policies",
			"Implement strong password requirements",
			"Enable multi-factor authentication",
			"Conduct user training",
			"Monitor and audit authentication events",
		},
		"software": {
			"Inventory all software components",
			"Identify outdated versions",
			"Plan update schedule",
			"Test updates in staging environment",
			"Deploy updates with rollback plan",
		},
		"network": {
			"Audit network configuration",
			"Implement encryption protocols",
			"Configure firewall rules",
			"Enable network monitoring",
			"Regular security assessments",
		},
		"authorization": {
			"Review user permissions",
			"Implement least privilege principle",
			"Set up access reviews",
			"Configure role-based access control",
			"Monitor access patterns",
		},
	}
	defaultSteps = []string{
		"Assess current implementation",
		"Develop remediation plan",
		"Implement security controls",
		"Test and validate",
		"Monitor and maintain",
	}
)

// Recommendations derives one fix per finding plus a general action for the
// score band, ordered from most to least urgent.
func Recommendations(vulns []models.Vulnerability, score int) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(vulns)+1)
	for _, v := range vulns {
		recs = append(recs, newRecommendation(
			"Fix: "+v.Title,
			v.Remediation,
			models.Priority(v.Severity),
			v.Category,
			implementationSteps(v.Category),
			costBySeverity[v.Severity],
			timeBySeverity[v.Severity],
			"Addresses "+strings.ToLower(string(v.Severity))+" risk",
		))
	}

	switch {
	case score >= service.CriticalThreshold:
		recs = append(recs, newRecommendation(
			"Immediate Security Review",
			"Conduct immediate comprehensive security review and implement emergency security measures",
			models.PriorityCritical,
			"General Security",
			"Engage security experts for immediate assessment and remediation",
			"$50,000 - $100,000",
			"1-2 weeks",
			"Significant risk reduction",
		))
	case score >= service.HighThreshold:
		recs = append(recs, newRecommendation(
			"Enhanced Security Monitoring",
			"Implement 24/7 security monitoring and incident response capabilities",
			models.PriorityHigh,
			"Monitoring",
			"Deploy SIEM solution and establish SOC team",
			"$25,000 - $50,000",
			"2-4 weeks",
			"Improved threat detection",
		))
	case score >= service.MediumThreshold:
		recs = append(recs, newRecommendation(
			"Security Awareness Training",
			"Conduct comprehensive security awareness training for all employees",
			models.PriorityMedium,
			"Training",
			"Implement regular security training program",
			"$5,000 - $15,000",
			"1-2 weeks",
			"Reduced human error risk",
		))
	}

	slices.SortStableFunc(recs, func(a, b models.Recommendation) int {
		return priorityRank[b.Priority] - priorityRank[a.Priority]
	})
	return recs
}

func newRecommendation(title, description string, priority models.Priority, category, implementation, cost, duration, impact string) models.Recommendation {
	return models.Recommendation{
		ID:             models.ID(uuid.NewString()),
		Title:          title,
		Description:    description,
		Priority:       priority,
		Category:       category,
		Implementation: implementation,
		EstimatedCost:  cost,
		EstimatedTime:  duration,
		ExpectedImpact: impact,
	}
}

func implementationSteps(category string) string {
	steps, ok := stepsByCategory[strings.ToLower(category)]
	if !ok {
		steps = defaultSteps
	}
	lines := make([]string, len(steps))
	for i, step := range steps {
		lines[i] = fmt.Sprintf("%d. %s", i+1, step)
	}
	return strings.Join(lines, "\n")
}

// Summary renders the plain-text digest attached to a completed scan.
func Summary(organization, domain string, scanDate time.Time, a Assessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cybersecurity Assessment Summary for %s\n\n", organization)
	fmt.Fprintf(&b, "Scan Date: %s\n", scanDate.Format(time.RFC3339))
	fmt.Fprintf(&b, "Target: %s\n", domain)
	fmt.Fprintf(&b, "Risk Score: %d/100 (%s)\n\n", a.RiskScore, a.RiskLevel.DisplayName())

	fmt.Fprintf(&b, "Vulnerabilities Found: %d\n", len(a.Vulnerabilities))
	for _, sev := range []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow} {
		n := 0
		for _, v := range a.Vulnerabilities {
			if v.Severity == sev {
				n++
			}
		}
		label := strings.ToUpper(string(sev[:1])) + strings.ToLower(string(sev[1:]))
		fmt.Fprintf(&b, "%s: %d\n", label, n)
	}

	critical := 0
	for _, r := range a.Recommendations {
		if r.Priority == models.PriorityCritical {
			critical++
		}
	}
	fmt.Fprintf(&b, "\nRecommendations: %d\n", len(a.Recommendations))
	fmt.Fprintf(&b, "Priority Actions: %d\n", critical)
	return b.String()
}
