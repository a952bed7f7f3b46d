package models

// SystemStats is the administrative overview from /admin/stats.
type SystemStats struct {
	TotalUsers        int       `json:"totalUsers"`
	AdminUsers        int       `json:"adminUsers"`
	RegularUsers      int       `json:"regularUsers"`
	TotalScans        int       `json:"totalScans"`
	CriticalRiskScans int       `json:"criticalRiskScans"`
	HighRiskScans     int       `json:"highRiskScans"`
	MediumRiskScans   int       `json:"mediumRiskScans"`
	LowRiskScans      int       `json:"lowRiskScans"`
	AverageRiskScore  int       `json:"averageRiskScore"`
	LastUpdated       Timestamp `json:"lastUpdated"`
	AdminUser         string    `json:"adminUser"`
}

// UserInfo is one account as listed by the admin endpoints.
type UserInfo struct {
	ID           ID         `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Organization string     `json:"organization,omitempty"`
	Role         Role       `json:"role"`
	Enabled      bool       `json:"enabled"`
	CreatedAt    Timestamp  `json:"createdAt"`
	LastLogin    *Timestamp `json:"lastLogin"`
}

// UserList wraps /admin/users and /admin/users/role/{role}.
type UserList struct {
	Users      []UserInfo `json:"users"`
	Role       Role       `json:"role,omitempty"`
	TotalUsers int        `json:"totalUsers"`
}

// ServiceHealth is returned by /auth/health and /admin/health.
type ServiceHealth struct {
	Status     string    `json:"status"`
	Service    string    `json:"service"`
	Database   string    `json:"database,omitempty"`
	TotalUsers int       `json:"totalUsers,omitempty"`
	TotalScans int       `json:"totalScans,omitempty"`
	Version    string    `json:"version,omitempty"`
	Timestamp  Timestamp `json:"timestamp"`
}
