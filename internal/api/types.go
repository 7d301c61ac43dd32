package api

import (
	"encoding/json"
	"time"
)

// Internal workflow statuses, owned by the dashboard.
const (
	StatusOpen         = "OPEN"
	StatusResolved     = "RESOLVED"
	StatusForRerouting = "FOR REROUTING"
)

// CaseStatuses lists the internal workflow states in display order.
var CaseStatuses = []string{StatusOpen, StatusResolved, StatusForRerouting}

// MyNagaStatuses lists the externally-reported states from the MyNaga mobile
// app. This enumeration is independent of the internal status field and the
// two must never be conflated.
var MyNagaStatuses = []string{
	"In Progress",
	"Pending Confirmation",
	"Pending Review",
	"Under Review",
	"Resolved",
	"Rejected - Out of Scope",
	"Rejected - Unclear Report",
	"Rejected - Test",
	"Rejected",
	"Withdrawn",
	"No Status Yet",
}

// Case is one citizen-submitted report as served by the backend.
type Case struct {
	ID              int64     `json:"id,omitempty"`
	ControlNo       string    `json:"control_no"`
	DateCreated     time.Time `json:"date_created,omitempty"`
	Category        string    `json:"category"`
	SenderLocation  string    `json:"sender_location,omitempty"`
	Cluster         string    `json:"cluster,omitempty"`
	Barangay        string    `json:"barangay,omitempty"`
	Description     string    `json:"description,omitempty"`
	AttachedMedia   string    `json:"attached_media,omitempty"`
	Office          string    `json:"office,omitempty"`
	LinkToReport    string    `json:"link_to_report,omitempty"`
	MyNagaAppStatus string    `json:"mynaga_app_status,omitempty"`
	// Auto-response message echoed to the citizen; generated server-side,
	// read-only from the client's perspective.
	UpdatesSentToUser string `json:"updates_sent_to_user_new,omitempty"`
	Status            string `json:"status,omitempty"`
	ReportedBy        string `json:"reported_by,omitempty"`
	ContactNumber     string `json:"contact_number,omitempty"`
	RefinedCategory   string `json:"refined_category,omitempty"`
	ScreenedBy        string `json:"screened_by,omitempty"`
	CaseAging         int    `json:"case_aging,omitempty"`
	Month             string `json:"month,omitempty"`

	LastStatusUpdate *time.Time `json:"last_status_update_datetime,omitempty"`

	Tags    []Tag          `json:"tags,omitempty"`
	Updates []StatusUpdate `json:"updates,omitempty"`
}

// CasePatch is a partial case for PUT requests and store merges. Nil fields
// are left untouched, both on the wire and in the in-memory store.
type CasePatch struct {
	Category          *string `json:"category,omitempty"`
	Cluster           *string `json:"cluster,omitempty"`
	Barangay          *string `json:"barangay,omitempty"`
	Description       *string `json:"description,omitempty"`
	SenderLocation    *string `json:"sender_location,omitempty"`
	Office            *string `json:"office,omitempty"`
	MyNagaAppStatus   *string `json:"mynaga_app_status,omitempty"`
	UpdatesSentToUser *string `json:"updates_sent_to_user_new,omitempty"`
	Status            *string `json:"status,omitempty"`
	ReportedBy        *string `json:"reported_by,omitempty"`
	ContactNumber     *string `json:"contact_number,omitempty"`
	RefinedCategory   *string `json:"refined_category,omitempty"`
}

// Patch converts a full server representation into a patch that sets every
// mutable field. Merging it into a stored case replaces the wire fields while
// retaining anything the response did not carry.
func (c Case) Patch() CasePatch {
	return CasePatch{
		Category:          &c.Category,
		Cluster:           &c.Cluster,
		Barangay:          &c.Barangay,
		Description:       &c.Description,
		SenderLocation:    &c.SenderLocation,
		Office:            &c.Office,
		MyNagaAppStatus:   &c.MyNagaAppStatus,
		UpdatesSentToUser: &c.UpdatesSentToUser,
		Status:            &c.Status,
		ReportedBy:        &c.ReportedBy,
		ContactNumber:     &c.ContactNumber,
		RefinedCategory:   &c.RefinedCategory,
	}
}

// Tag is a free-form label attached to a case.
type Tag struct {
	ID        int64     `json:"id,omitempty"`
	TagName   string    `json:"tag_name"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// StatusUpdate is one progress note on a case; posting one with a
// StatusAfterUpdate also moves the case's internal status.
type StatusUpdate struct {
	ID                int64     `json:"id,omitempty"`
	UpdateText        string    `json:"update_text"`
	UpdatedBy         string    `json:"updated_by"`
	UpdateTimestamp   time.Time `json:"update_timestamp,omitempty"`
	StatusAfterUpdate string    `json:"status_after_update,omitempty"`
}

// Office is a fixed-catalog responsible department. The catalog is
// server-owned; the client never hardcodes a second copy of the code list.
type Office struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Location string `json:"location,omitempty"`
	IsActive bool   `json:"is_active,omitempty"`
}

// Cluster is a free-form grouping label with a lifecycle independent of cases.
type Cluster struct {
	ID          int64     `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Barangay    string    `json:"barangay,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Stats is the server-computed dashboard aggregate. Never mutated client-side.
type Stats struct {
	TotalCases       int     `json:"total_cases"`
	OpenCases        int     `json:"open_cases"`
	ResolvedCases    int     `json:"resolved_cases"`
	ReroutingCases   int     `json:"rerouting_cases"`
	TotalOffices     int     `json:"total_offices"`
	TotalClusters    int     `json:"total_clusters"`
	AverageCaseAging float64 `json:"average_case_aging"`
}

// MyNagaStatusBreakdown holds per-MyNaga-status case counts plus the overall
// total. The wire form is a flat JSON object keyed by status name with a
// "total" entry alongside.
type MyNagaStatusBreakdown struct {
	Counts map[string]int
	Total  int
}

func (b *MyNagaStatusBreakdown) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Counts = make(map[string]int, len(raw))
	for k, v := range raw {
		if k == "total" {
			b.Total = v
			continue
		}
		b.Counts[k] = v
	}
	return nil
}

func (b MyNagaStatusBreakdown) MarshalJSON() ([]byte, error) {
	raw := make(map[string]int, len(b.Counts)+1)
	for k, v := range b.Counts {
		raw[k] = v
	}
	raw["total"] = b.Total
	return json.Marshal(raw)
}

// Count returns the count for a status, zero when absent.
func (b MyNagaStatusBreakdown) Count(status string) int {
	return b.Counts[status]
}

// ImportResult summarizes an Excel import: rows that failed are reported
// alongside the success count, without rolling back imported rows.
type ImportResult struct {
	Success       bool     `json:"success"`
	ImportedCount int      `json:"imported_count"`
	Errors        []string `json:"errors"`
}

// ExportResult points at the server-produced export file.
type ExportResult struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path"`
}

// ReportLinkResult resolves a control number to a deep link into the MyNaga
// mobile app. Success=false with an empty link is a normal "no link" outcome,
// not an error.
type ReportLinkResult struct {
	Success   bool   `json:"success"`
	ControlNo string `json:"control_no"`
	Link      string `json:"link"`
	Message   string `json:"message,omitempty"`
}

// SyncRunResult reports one sync pass of either integration.
type SyncRunResult struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Stats   SyncStats `json:"stats"`
}

// SyncStats counts the effects of a sync pass.
type SyncStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// MyNagaSyncStatus is the MyNaga integration's scheduler state.
type MyNagaSyncStatus struct {
	LastSyncTime   string     `json:"last_sync_time,omitempty"`
	LastSyncStatus *SyncStats `json:"last_sync_status,omitempty"`
	IsSyncing      bool       `json:"is_syncing"`
}

// MyNagaConfig configures the backend's MyNaga sync scheduler.
type MyNagaConfig struct {
	AuthToken           string `json:"auth_token"`
	SyncIntervalMinutes int    `json:"sync_interval_minutes,omitempty"`
}

// ConfigureResult acknowledges an integration configuration request.
type ConfigureResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SyncInterval int    `json:"sync_interval,omitempty"`
}

// TestResult reports a connection test against either integration.
type TestResult struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	SampleCount int      `json:"sample_count,omitempty"`
	RowCount    int      `json:"row_count,omitempty"`
	Columns     []string `json:"columns,omitempty"`
	AuthMethod  string   `json:"auth_method,omitempty"`
}

// SheetsConfig identifies a Google Sheet and optional service-account
// credentials; with no credentials the backend falls back to published CSV.
type SheetsConfig struct {
	SheetURL        string `json:"sheet_url"`
	CredentialsJSON string `json:"credentials_json,omitempty"`
	IntervalSeconds int    `json:"interval_seconds,omitempty"`
}

// SheetsSyncStatus is the Google Sheets integration's scheduler state.
type SheetsSyncStatus struct {
	Configured   bool   `json:"configured"`
	LastSyncTime string `json:"last_sync_time,omitempty"`
	IsSyncing    bool   `json:"is_syncing,omitempty"`
}

// AckResult is a generic success/message acknowledgement.
type AckResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
