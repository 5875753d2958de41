package models

// OrgProfile is the inferred flavor of a connected org.
type OrgProfile string

const (
	OrgProfileNPSP  OrgProfile = "npsp"
	OrgProfileEDA   OrgProfile = "eda"
	OrgProfileOther OrgProfile = "other"
)

// OrgObjects is the object listing of a connected org with its profile and
// the subset of objects recommended for selection.
type OrgObjects struct {
	OrgID       string         `json:"org_id"`
	Profile     OrgProfile     `json:"profile"`
	Objects     []GlobalObject `json:"objects"`
	Recommended []string       `json:"recommended"`
	LimitInfo   *LimitInfo     `json:"limit_info,omitempty"`
}

// OrgConnection describes an established org session without secrets.
type OrgConnection struct {
	OrgID       string     `json:"org_id"`
	Adapter     string     `json:"adapter"`
	InstanceURL string     `json:"instance_url,omitempty"`
	Username    string     `json:"username,omitempty"`
	LimitInfo   *LimitInfo `json:"limit_info,omitempty"`
}
